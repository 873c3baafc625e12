// Package engine assembles the matching and relationship services over a
// pair of profile and group collections. Both processes build it the same
// way; only the collaborators attached afterwards differ.
package engine

import (
	"context"
	"fmt"

	driver "go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/ivankudzin/matchcore/internal/config"
	"github.com/ivankudzin/matchcore/internal/domain/model"
	mongoinfra "github.com/ivankudzin/matchcore/internal/infra/mongo"
	"github.com/ivankudzin/matchcore/internal/repo/docstore"
	mongorepo "github.com/ivankudzin/matchcore/internal/repo/mongo"
	groupssvc "github.com/ivankudzin/matchcore/internal/services/groups"
	ledgersvc "github.com/ivankudzin/matchcore/internal/services/ledger"
	matchingsvc "github.com/ivankudzin/matchcore/internal/services/matching"
	modsvc "github.com/ivankudzin/matchcore/internal/services/moderation"
	profilesvc "github.com/ivankudzin/matchcore/internal/services/profiles"
	reconcilesvc "github.com/ivankudzin/matchcore/internal/services/reconcile"
)

type Stores struct {
	Client   *driver.Client
	Profiles docstore.Collection[model.Profile]
	Groups   docstore.Collection[model.Group]
}

// OpenStores connects to MongoDB, ensures the indexes and returns the
// typed collections.
func OpenStores(ctx context.Context, cfg config.Config) (*Stores, error) {
	client, err := mongoinfra.NewClient(ctx, mongoinfra.Config{
		URI:            cfg.Mongo.URI,
		Database:       cfg.Mongo.Database,
		ConnectTimeout: cfg.Mongo.ConnectTimeout,
	})
	if err != nil {
		return nil, err
	}

	db := client.Database(cfg.Mongo.Database)
	if err := mongoinfra.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	timeout := cfg.Engine.StoreTimeout
	return &Stores{
		Client:   client,
		Profiles: mongorepo.NewCollection[model.Profile](db.Collection(mongoinfra.ProfilesCollection), timeout),
		Groups:   mongorepo.NewCollection[model.Group](db.Collection(mongoinfra.GroupsCollection), timeout),
	}, nil
}

func (s *Stores) Close(ctx context.Context) error {
	if s == nil || s.Client == nil {
		return nil
	}
	return s.Client.Disconnect(ctx)
}

type Engine struct {
	Profiles   *profilesvc.Service
	Ledger     *ledgersvc.Service
	Matching   *matchingsvc.Service
	Moderation *modsvc.Service
	Groups     *groupssvc.Service
	Reconcile  *reconcilesvc.Service
}

func New(
	profiles docstore.Collection[model.Profile],
	groups docstore.Collection[model.Group],
	cfg config.EngineConfig,
	log *zap.Logger,
) *Engine {
	if log == nil {
		log = zap.NewNop()
	}

	regions := make(map[string]model.Bounds, len(cfg.Regions))
	for region, b := range cfg.Regions {
		regions[region] = bounds(b)
	}

	ledger := ledgersvc.NewService(profiles, ledgersvc.Config{
		VisitedCapacity: cfg.VisitedCapacity,
		MaxBatchIDs:     cfg.MaxBatchIDs,
	}, log.Named("ledger"))
	moderation := modsvc.NewService(profiles, groups, modsvc.Config{
		ProfileWindow: cfg.ProfileComplaintWindow,
		GroupWindow:   cfg.GroupComplaintWindow,
		BlockRatio:    cfg.GroupBlockRatio,
	}, log.Named("moderation"))
	groupService := groupssvc.NewService(groups, profiles, moderation, log.Named("groups"))

	return &Engine{
		Profiles: profilesvc.NewService(profiles, log.Named("profiles")),
		Ledger:   ledger,
		Matching: matchingsvc.NewService(profiles, matchingsvc.Config{
			Regions:         regions,
			DefaultBounds:   bounds(cfg.DefaultBounds),
			DefaultPageSize: cfg.DefaultPageSize,
			MaxPageSize:     cfg.MaxPageSize,
			MaxBatchIDs:     cfg.MaxBatchIDs,
		}),
		Moderation: moderation,
		Groups:     groupService,
		Reconcile:  reconcilesvc.NewService(ledger, groupService, cfg.MaxBatchIDs, log.Named("reconcile")),
	}
}

func bounds(b config.BoundsConfig) model.Bounds {
	return model.Bounds{
		AgeMin:    b.AgeMin,
		AgeMax:    b.AgeMax,
		HeightMin: b.HeightMin,
		HeightMax: b.HeightMax,
	}
}
