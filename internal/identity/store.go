package identity

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/qzaway/foodcourt/internal/config"
	"github.com/qzaway/foodcourt/internal/repository"
	"github.com/qzaway/foodcourt/internal/repository/file"
	"github.com/qzaway/foodcourt/internal/repository/postgres"
)

// OpenStore builds the identity store selected by IDENTITY_STORE. The
// returned close func releases any database connection.
func OpenStore(cfg *config.Config, logger *zap.Logger) (repository.IdentityStore, func(), error) {
	switch cfg.Identity.Store {
	case "postgres":
		db, err := postgres.NewConnection(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		repos := postgres.NewRepositories(db, logger)
		return repos.Identity, func() { db.Close() }, nil
	case "file", "":
		return file.NewIdentityRepository(cfg.Identity.File, logger), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown identity store %q", cfg.Identity.Store)
	}
}
