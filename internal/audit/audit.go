package audit

import (
	"context"
	"fmt"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/log"
)

// Audit actions.
const (
	ActionRegister         = "user.register"
	ActionLogin            = "user.login"
	ActionLoginFailed      = "user.login_failed"
	ActionLogout           = "user.logout"
	ActionUsersImported    = "user.bulk_import"
	ActionCustomerAssigned = "customer.assign"
	ActionDealStageChanged = "deal.stage_change"
	ActionChatClosed       = "chat.close"
)

// Field constants for audit entries.
const (
	FieldAction   = "action"
	FieldTargetID = "target_id"
	FieldDetail   = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action, userID, msg string) {
	log.Ctx(ctx).Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Msg(msg)
}

// LogWithTarget emits an audit log naming the acted-on entity.
func LogWithTarget(ctx context.Context, action, userID, targetID, msg string) {
	log.Ctx(ctx).Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldTargetID, targetID).
		Msg(msg)
}

// UserRegistered records a new account creation.
func UserRegistered(ctx context.Context, userID, email, role string) {
	log.Ctx(ctx).Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, ActionRegister).
		Str(log.FieldUserID, userID).
		Str(log.FieldEmail, email).
		Str(log.FieldRole, role).
		Msg("user registered")
}

// LoginSucceeded records a successful login.
func LoginSucceeded(ctx context.Context, userID, email, ip string) {
	log.Ctx(ctx).Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, ActionLogin).
		Str(log.FieldUserID, userID).
		Str(log.FieldEmail, email).
		Str(log.FieldClientIP, ip).
		Msg("login succeeded")
}

// LoginFailed records a rejected login attempt.
func LoginFailed(ctx context.Context, email, ip string) {
	log.Ctx(ctx).Warn().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, ActionLoginFailed).
		Str(log.FieldEmail, email).
		Str(log.FieldClientIP, ip).
		Msg("login failed")
}

// UsersImported records the outcome of a bulk import run.
func UsersImported(ctx context.Context, importedBy string, ok, failed int) {
	log.Ctx(ctx).Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, ActionUsersImported).
		Str(log.FieldUserID, importedBy).
		Str(FieldDetail, fmt.Sprintf("imported=%d failed=%d", ok, failed)).
		Msg("users imported")
}
