package service

import (
	"log/slog"

	"github.com/hoangnk/clubslots/internal/allocator"
	"github.com/hoangnk/clubslots/internal/notifier"
	postgres "github.com/hoangnk/clubslots/internal/repository/postgres"
	redis "github.com/hoangnk/clubslots/internal/repository/redis"
	"github.com/hoangnk/clubslots/internal/service/admin"
	"github.com/hoangnk/clubslots/internal/service/query"
	"github.com/hoangnk/clubslots/internal/service/reservation"
)

type Services struct {
	Reservation *reservation.Service
	Query       *query.Service
	Admin       *admin.Service
}

func NewServices(
	store *postgres.Store,
	cache *redis.Cache,
	counts *redis.LiveCountChannel,
	notif notifier.Notifier,
	log *slog.Logger,
) *Services {
	events := store.Events()
	ledger := store.Ledger()
	members := store.Members()

	alloc := allocator.New(ledger, members, notif, counts, log)

	return &Services{
		Reservation: reservation.New(events, ledger, members, alloc, notif, cache, log),
		Query:       query.New(events, ledger, members, cache),
		Admin:       admin.New(events, ledger, members, alloc, cache, log),
	}
}
