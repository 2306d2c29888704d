package root

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"focusquest/internal/engine"
	"focusquest/internal/seed"
	"focusquest/internal/storage"
)

func openDB(ctx context.Context) (*sql.DB, func(), error) {
	path, err := storage.ResolveDBPath()
	if err != nil {
		return nil, nil, err
	}
	db, err := storage.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = db.Close()
	}
	if err := seed.Apply(ctx, db); err != nil {
		cleanup()
		return nil, nil, err
	}
	return db, cleanup, nil
}

func openService(ctx context.Context) (*engine.Service, func(), error) {
	db, cleanup, err := openDB(ctx)
	if err != nil {
		return nil, nil, err
	}
	svc := engine.NewService(db)
	if _, err := svc.Bootstrap(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}

// resolveTaskID accepts a full task id or a unique prefix.
func resolveTaskID(ctx context.Context, svc *engine.Service, ref string) (string, error) {
	t, err := svc.TaskRepo().Get(ctx, ref)
	if err != nil {
		return "", err
	}
	if t != nil {
		return t.ID, nil
	}

	all, err := svc.TaskRepo().ListAll(ctx)
	if err != nil {
		return "", err
	}
	var match string
	for _, t := range all {
		if strings.HasPrefix(t.ID, ref) {
			if match != "" {
				return "", fmt.Errorf("task id prefix %q is ambiguous", ref)
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("no task matches %q", ref)
	}
	return match, nil
}
