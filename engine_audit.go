package goRotate

import (
	"context"

	internalaudit "github.com/MrEthical07/goRotate/internal/audit"
)

const (
	auditEventLoginSuccess   = "login_success"
	auditEventLoginFailure   = "login_failure"
	auditEventRefreshSuccess = "refresh_success"
	auditEventRefreshFailure = "refresh_failure"
	auditEventArchiveSuccess = "archive_success"
	auditEventArchiveFailure = "archive_failure"
	auditEventLogoutSuccess  = "logout_success"
	auditEventLogoutFailure  = "logout_failure"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	userID string,
	rsid string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	event := internalaudit.NewEvent(eventType, e.now())
	event.UserID = userID
	event.RSID = rsid
	event.IP = clientIPFromContext(ctx)
	event.UserAgent = userAgentFromContext(ctx)
	event.Success = err == nil
	event.Error = Code(err)
	if metadataBuilder != nil {
		event.Metadata = metadataBuilder()
	}

	e.audit.Emit(ctx, event)
}
