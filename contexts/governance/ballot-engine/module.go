package ballotengine

import (
	"log/slog"

	httpadapter "ballot/contexts/governance/ballot-engine/adapters/http"
	"ballot/contexts/governance/ballot-engine/adapters/memory"
	"ballot/contexts/governance/ballot-engine/application/commands"
	"ballot/contexts/governance/ballot-engine/application/queries"
	"ballot/contexts/governance/ballot-engine/domain/entities"
	"ballot/contexts/governance/ballot-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Ballots ports.BallotRepository
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Logger  *slog.Logger
}

func NewModule(deps Dependencies) Module {
	ballotUseCase := commands.BallotUseCase{
		Ballots: deps.Ballots,
		Clock:   deps.Clock,
		IDGen:   deps.IDGen,
		Logger:  deps.Logger,
	}
	tallyUseCase := queries.TallyUseCase{
		Ballots: deps.Ballots,
	}
	return Module{
		Handler: httpadapter.Handler{
			Ballots: ballotUseCase,
			Tally:   tallyUseCase,
			Logger:  deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Ballot, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Ballots: store,
		Clock:   store,
		IDGen:   store,
		Logger:  logger,
	})
	module.Store = store
	return module
}
