package domain

import "context"

// MemberStatus is the role a user holds within a chat, mirroring the
// platform's chat-member statuses.
type MemberStatus string

const (
	StatusCreator       MemberStatus = "creator"
	StatusAdministrator MemberStatus = "administrator"
	StatusMember        MemberStatus = "member"
	StatusRestricted    MemberStatus = "restricted"
	StatusLeft          MemberStatus = "left"
	StatusKicked        MemberStatus = "kicked"
)

// MemberInfo is the live membership state fetched fresh per user per tick.
// It is never persisted.
type MemberInfo struct {
	Status MemberStatus
	IsBot  bool
}

// Privileged reports whether the member is exempt from balance enforcement.
func (m MemberInfo) Privileged() bool {
	return m.Status == StatusCreator || m.Status == StatusAdministrator
}

// ChatService is the slice of the messaging platform consumed by the
// reconciler: membership lookup and removal. Implementations must be safe
// for concurrent use.
type ChatService interface {
	GetMember(ctx context.Context, chatID, userID string) (MemberInfo, error)
	RemoveMember(ctx context.Context, chatID, userID string) error
}

// AlertSender delivers a formatted message to a chat. Kept separate from
// ChatService so the fan-out depends only on what it uses.
type AlertSender interface {
	SendMessage(ctx context.Context, chatID, text string) error
}
