package service

import (
	"alcyxob/hyrox-trainer/internal/domain"
	"alcyxob/hyrox-trainer/internal/storage"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// ExportResult points at an uploaded program snapshot.
type ExportResult struct {
	Key         string    `json:"key"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// programSnapshot is the exported document.
type programSnapshot struct {
	ExportedAt time.Time           `json:"exportedAt"`
	Program    *domain.UserProgram `json:"program"`
	Insights   *Insights           `json:"insights"`
}

// ExportProgram uploads a JSON snapshot of the program, its ledger and the
// current insights, and returns a presigned download URL. Each export
// overwrites the previous one.
func (s *programService) ExportProgram(ctx context.Context, userID string) (*ExportResult, error) {
	if s.fileStorage == nil {
		return nil, ErrExportUnavailable
	}

	program, completions, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	program.Completions = completions
	snapshot := programSnapshot{
		ExportedAt: now,
		Program:    program,
		Insights:   s.insights(ctx, program, completions, now),
	}
	body, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}

	key := storage.ExportKey(userID, program.ID)
	if err = s.fileStorage.PutObject(ctx, key, "application/json", body); err != nil {
		return nil, persistenceError("upload export", err)
	}
	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, key, s.exportExpiry)
	if err != nil {
		return nil, persistenceError("presign export", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "program exported",
		slog.String("program_id", program.ID), slog.String("key", key), slog.Int("bytes", len(body)))
	return &ExportResult{Key: key, DownloadURL: url, ExpiresAt: now.Add(s.exportExpiry)}, nil
}
