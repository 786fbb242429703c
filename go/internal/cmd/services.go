package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/popqiz/popqiz/go/internal/answer"
	"github.com/popqiz/popqiz/go/internal/dbconfig"
	"github.com/popqiz/popqiz/go/internal/gateway"
	"github.com/popqiz/popqiz/go/internal/httpapi"
	"github.com/popqiz/popqiz/go/internal/outbox"
	"github.com/popqiz/popqiz/go/internal/player"
	"github.com/popqiz/popqiz/go/internal/question"
	"github.com/popqiz/popqiz/go/internal/room"
	"github.com/popqiz/popqiz/go/internal/round"
	"github.com/popqiz/popqiz/go/internal/ticker"
)

type Services struct {
	Rooms      *room.Repository
	Controller *round.Controller
	API        *httpapi.Handler
	Gateway    *gateway.Service
	Ticker     *ticker.Ticker
	Outbox     *outbox.Listener

	nc *nats.Conn
}

func setupServices(pool *pgxpool.Pool, dbCfg dbconfig.Config, config *Config) (*Services, error) {
	clock := clockwork.NewRealClock()

	// Repository layer, bound to the pool; transactional steps rebind
	// the same repositories to a tx through the transactor.
	rooms := room.NewRepository(pool)
	players := player.NewRepository(pool)
	answers := answer.NewRepository(pool)
	questions := question.NewRepository(pool)

	selector := question.NewSelectorWithFloor(questions, config.Questions.MinQuality)
	transactor := round.NewPgTransactor(pool)

	controller := round.NewController(rooms, players, answers, selector, transactor, clock)

	// Outbox relay: Postgres NOTIFY to JetStream.
	nc, err := nats.Connect(config.Nats.URL,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	publisher, err := outbox.NewJetStreamPublisher(context.Background(), js)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create publisher: %w", err)
	}

	listenerCfg := outbox.DefaultListenerConfig()
	listenerCfg.DatabaseURL = dbCfg.DSN()
	listener, err := outbox.NewListener(outbox.NewApp(outbox.NewRepository(pool)), publisher, listenerCfg)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create outbox listener: %w", err)
	}

	// WebSocket gateway, fed by the same JetStream stream.
	gatewayCfg := gateway.DefaultConfig()
	gatewayCfg.JetStreamConfig.URL = config.Nats.URL
	gatewayService, err := gateway.NewService(gatewayCfg, roomResolver{rooms: rooms})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create gateway service: %w", err)
	}

	deadlineTicker := ticker.New(rooms, controller, clock)
	api := httpapi.NewHandler(controller, deadlineTicker)

	return &Services{
		Rooms:      rooms,
		Controller: controller,
		API:        api,
		Gateway:    gatewayService,
		Ticker:     deadlineTicker,
		Outbox:     listener,
		nc:         nc,
	}, nil
}

func (s *Services) Close() {
	if s.nc != nil {
		s.nc.Close()
	}
}

// roomResolver adapts the room repository to the gateway's lookup.
type roomResolver struct {
	rooms *room.Repository
}

func (r roomResolver) RoomIDByCode(ctx context.Context, code string) (uuid.UUID, error) {
	rm, err := r.rooms.ByCode(ctx, code)
	if err != nil {
		return uuid.Nil, err
	}
	return rm.ID, nil
}
