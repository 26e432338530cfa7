// Package audit registra las acciones que mutan datos (ventas, anulaciones, usuarios).
// El registro es best-effort: un fallo de almacenamiento se reporta por zerolog y nunca
// revierte la operación de negocio que lo originó.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/buildmaster/backoffice-api/internal/domain/entity"
	"github.com/buildmaster/backoffice-api/internal/domain/repository"
)

// Logger sink append-only sobre ActivityLogRepository.
type Logger struct {
	repo repository.ActivityLogRepository
	log  zerolog.Logger
	now  func() time.Time
}

// NewLogger construye el audit logger. log es el canal operativo para fallos del propio registro.
func NewLogger(repo repository.ActivityLogRepository, log zerolog.Logger) *Logger {
	return &Logger{repo: repo, log: log.With().Str("component", "audit").Logger(), now: time.Now}
}

// Record agrega una entrada. meta puede ser nil; si no lo es, su tipo debe corresponder a action.
// No retorna error: el llamador ya confirmó su operación y no puede deshacerla.
func (l *Logger) Record(ctx context.Context, action, summary, actor string, meta entity.LogMetadata) {
	entry := &entity.ActivityLog{
		Action:    action,
		Details:   summary,
		User:      actor,
		Timestamp: l.now().UTC(),
	}
	if meta != nil {
		if meta.ActionKind() != action {
			// Se guarda la entrada igual, sin un payload que no corresponde a la acción.
			l.log.Error().Str("action", action).Str("metadata_kind", meta.ActionKind()).
				Msg("metadata no corresponde a la acción; se omite")
		} else if raw, err := json.Marshal(meta); err != nil {
			l.log.Error().Err(err).Str("action", action).Msg("serializar metadata")
		} else {
			entry.Metadata = raw
		}
	}
	if err := l.repo.Append(ctx, entry); err != nil {
		l.log.Error().Err(err).
			Str("action", action).
			Str("user", actor).
			Str("details", summary).
			Msg("no se pudo registrar la actividad")
		return
	}
	l.log.Debug().Int64("log_id", entry.ID).Str("action", action).Msg("actividad registrada")
}
