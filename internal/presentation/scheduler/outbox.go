package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sitehatch/sitehatch-backend/internal/application"
	"github.com/sitehatch/sitehatch-backend/internal/application/consts"
	"github.com/sitehatch/sitehatch-backend/internal/application/events"
	"github.com/sitehatch/sitehatch-backend/internal/infra/db"
	dbs "github.com/sitehatch/sitehatch-backend/pkg/db"
	"github.com/sitehatch/sitehatch-backend/pkg/env"
	"github.com/sitehatch/sitehatch-backend/pkg/interfaces"
)

// OutboxPoller drains the transactional outbox: mail queued inside command
// transactions is delivered here, after those transactions committed.
type OutboxPoller struct {
	processors *application.Processors
	uowFactory *dbs.UOWFactory
	cfg        *OutboxConfig
	stop       chan struct{}
}

type OutboxConfig struct {
	limit    uint8
	interval uint16
}

func NewOutboxConfig() *OutboxConfig {
	limit, err := strconv.Atoi(env.GetEnv("SCHEDULER_LIMIT", "5"))
	if err != nil {
		limit = 5
	}

	interval, err := strconv.Atoi(env.GetEnv("SCHEDULER_INTERVAL", "5"))
	if err != nil {
		interval = 5
	}
	return &OutboxConfig{
		limit:    uint8(limit),
		interval: uint16(interval),
	}
}

func NewOutboxPoller(processors *application.Processors, uowFactory *dbs.UOWFactory, cfg *OutboxConfig) *OutboxPoller {
	return &OutboxPoller{processors: processors, uowFactory: uowFactory, cfg: cfg, stop: make(chan struct{})}
}

func (o *OutboxPoller) Start() {
	slog.Info("starting outbox poller", "intervalSeconds", o.cfg.interval, "batchLimit", o.cfg.limit)
	ticker := time.NewTicker(time.Duration(o.cfg.interval) * time.Second)
	defer ticker.Stop()
	ctx, cancel := context.WithCancel(context.Background())
	for {
		select {
		case <-ticker.C:
			batch, err := o.claimBatch(ctx)
			if err != nil {
				slog.Error("outbox claim failed", "err", err)
				continue
			}
			o.dispatch(ctx, batch)
		case <-o.stop:
			cancel()
			return
		}
	}
}

// claimBatch atomically flips the oldest NotProcessed rows to Processing and
// returns them. The row lock inside the subquery keeps concurrent pollers
// from claiming the same events.
func (o *OutboxPoller) claimBatch(ctx context.Context) ([]db.Outbox, error) {
	uow := o.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, err
	}
	defer uow.Finalize(&err)

	query := `UPDATE hatch.outbox SET status = $1
		WHERE id IN (
			SELECT id FROM hatch.outbox WHERE status = $2
			ORDER BY created_at
			FOR NO KEY UPDATE SKIP LOCKED
			LIMIT $3
		)
		RETURNING id, event, status, payload, created_at`
	rows, err := tx.Query(ctx, query, consts.Processing, consts.NotProcessed, o.cfg.limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batch []db.Outbox
	for rows.Next() {
		var event db.Outbox
		if err = rows.Scan(&event.ID, &event.Event, &event.Status, &event.Payload, &event.CreatedAt); err != nil {
			return nil, err
		}
		batch = append(batch, event)
	}
	err = rows.Err()
	return batch, err
}

func (o *OutboxPoller) dispatch(ctx context.Context, batch []db.Outbox) {
	if len(batch) == 0 {
		slog.Debug("no events to process")
		return
	}

	var wg sync.WaitGroup
	for _, event := range batch {
		wg.Add(1)
		go func(ev db.Outbox) {
			defer wg.Done()
			if err := o.handleEvent(ctx, ev); err != nil {
				slog.Error("handler error", "event", ev.ID, "err", err)
			}
		}(event)
	}
	wg.Wait()
}

// handleEvent runs the matching processor and stamps the outbox row in the
// transaction the processor left open, so the mail log and the status flip
// commit together.
func (o *OutboxPoller) handleEvent(ctx context.Context, outbox db.Outbox) error {
	var (
		uow    interfaces.UoW
		tx     pgx.Tx
		err    error
		status = consts.Processed
	)

	slog.Info("handling event", "event", outbox.Event, "id", outbox.ID)

	switch outbox.Event {
	case events.SendMail{}.GetType():
		event := db.MapOutboxModelToSendMail(outbox)
		uow, err = o.processors.SendMail.Handle(ctx, event)
	case events.SalesMail{}.GetType():
		event := db.MapOutboxModelToSalesMail(outbox)
		uow, err = o.processors.SendMail.HandleSales(ctx, event)
	default:
		slog.Warn("unknown event type", "event", outbox.Event)
		status = consts.InError
	}
	if err != nil {
		slog.Error("error in handler", "event", outbox.Event, "id", outbox.ID, "err", err)
		status = consts.InError
	}

	if uow == nil {
		var errTx error
		// open new transaction if there was none in event handler
		uow = o.uowFactory.GetUoW()
		tx, errTx = uow.Begin()
		if errTx != nil {
			return errors.Join(err, errTx)
		}
	} else {
		tx = uow.GetTx()
	}

	if _, err = tx.Exec(ctx, "UPDATE hatch.outbox SET status = $1 WHERE id = $2", status, outbox.ID); err != nil {
		errRollback := uow.Rollback()
		return errors.Join(err, errRollback)
	}
	if err = uow.Commit(); err != nil {
		return err
	}

	slog.Debug("processed event", "id", outbox.ID, "status", status)
	return nil
}

func (o *OutboxPoller) Stop() {
	slog.Info("stopping outbox poller")
	o.stop <- struct{}{}
}
