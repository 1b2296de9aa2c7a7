package orchestrator

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/ngld/buildorch/pkg/ccdb"
)

// processCompileCommands reports on the compile command database produced by the configure step and exports
// it if requested. Only a failed export is an error.
func (o *Orchestrator) processCompileCommands(ctx context.Context) error {
	export := o.opts.ExportCompileCommands
	if !o.opts.CheckCompileCommands && export == "" {
		return nil
	}

	dbPath := filepath.Join(o.buildDir, ccdb.FileName)
	db, err := ccdb.Load(dbPath)
	if err != nil {
		if export != "" {
			return &FilesystemError{Op: "export", Path: dbPath, Err: err}
		}

		if eris.Is(err, os.ErrNotExist) {
			log(ctx).Warn().
				Str("path", dbPath).
				Msgf("No compile command database found at %s", dbPath)
		} else {
			log(ctx).Warn().
				Err(err).
				Msgf("Failed to read %s", dbPath)
		}
		return nil
	}

	log(ctx).Info().
		Str("path", dbPath).
		Int("entries", len(db)).
		Msgf("Found %d compile commands in %s", len(db), dbPath)

	if export == "" {
		return nil
	}

	if !filepath.IsAbs(export) {
		export = filepath.Join(o.sourceDir, export)
	}

	err = db.Write(export)
	if err != nil {
		return &FilesystemError{Op: "export", Path: export, Err: err}
	}

	log(ctx).Info().
		Str("path", export).
		Msgf("Exported compile commands to %s", export)
	return nil
}
