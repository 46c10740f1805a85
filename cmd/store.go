package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fieldobs-cli/internal/blobstore"
	"github.com/sells-group/fieldobs-cli/internal/config"
	"github.com/sells-group/fieldobs-cli/internal/fieldmeta"
)

func initStore(ctx context.Context) (blobstore.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverDir:
		return blobstore.NewDir(cfg.Store.Dir), nil
	case config.DriverS3:
		return blobstore.NewS3(ctx, cfg.Store.S3Config)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initCatalog(ctx context.Context) (*fieldmeta.Catalog, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	return fieldmeta.NewCatalog(st,
		fieldmeta.WithBlocksKey(cfg.Catalog.BlocksKey),
		fieldmeta.WithSitesKey(cfg.Catalog.SitesKey),
	), nil
}
