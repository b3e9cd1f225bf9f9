package votingengine

import (
	"log/slog"

	httpadapter "dvoting/contexts/governance/voting-engine/adapters/http"
	"dvoting/contexts/governance/voting-engine/adapters/memory"
	"dvoting/contexts/governance/voting-engine/application/commands"
	"dvoting/contexts/governance/voting-engine/application/queries"
	"dvoting/contexts/governance/voting-engine/domain/entities"
	"dvoting/contexts/governance/voting-engine/ports"
)

type Module struct {
	Handler  httpadapter.Handler
	Election *entities.Election
	Store    *memory.Store
}

type Dependencies struct {
	Election *entities.Election
	Outbox   ports.OutboxWriter
	Audit    ports.OutboxRepository
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	electionUseCase := commands.ElectionUseCase{
		Election: deps.Election,
		Outbox:   deps.Outbox,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Logger:   deps.Logger,
	}
	resultsUseCase := queries.ResultsUseCase{
		Election: deps.Election,
		Audit:    deps.Audit,
		Clock:    deps.Clock,
	}
	return Module{
		Handler: httpadapter.Handler{
			Elections: electionUseCase,
			Results:   resultsUseCase,
			Logger:    deps.Logger,
		},
		Election: deps.Election,
	}
}

// NewInMemoryModule wires the election with the in-memory audit store. This
// is the default wiring for tests and for running without a database.
func NewInMemoryModule(name string, admin string, proposalTitles []string, logger *slog.Logger) (Module, error) {
	election, err := entities.NewElection(name, admin, proposalTitles)
	if err != nil {
		return Module{}, err
	}
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Election: election,
		Outbox:   store,
		Audit:    store,
		Clock:    store,
		IDGen:    store,
		Logger:   logger,
	})
	module.Store = store
	return module, nil
}
