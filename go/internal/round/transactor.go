package round

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/popqiz/popqiz/go/internal/answer"
	"github.com/popqiz/popqiz/go/internal/outbox"
	"github.com/popqiz/popqiz/go/internal/player"
	"github.com/popqiz/popqiz/go/internal/question"
	"github.com/popqiz/popqiz/go/internal/room"
	"github.com/popqiz/popqiz/go/internal/sqlutil"
)

// PgTransactor binds fresh repositories to one pgx transaction per
// InTx call, so a multi-table step commits or rolls back as a unit.
type PgTransactor struct {
	pool *pgxpool.Pool
}

func NewPgTransactor(pool *pgxpool.Pool) *PgTransactor {
	return &PgTransactor{pool: pool}
}

func (t *PgTransactor) InTx(ctx context.Context, fn func(s Stores) error) error {
	return sqlutil.Run(ctx, t.pool, func(tx pgx.Tx) error {
		questions := question.NewRepository(tx)
		return fn(Stores{
			Rooms:    room.NewRepository(tx),
			Players:  player.NewRepository(tx),
			Answers:  answer.NewRepository(tx),
			Feedback: questions,
			Usage:    questions,
			Outbox:   outbox.NewApp(outbox.NewRepository(tx)),
		})
	})
}
