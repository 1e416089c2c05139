package sqladapter

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/Xausdorf/openpoll/internal/domain"
	"github.com/Xausdorf/openpoll/internal/usecase"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err = Migrate(context.Background(), db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

var testID = domain.PollID{Team: "T1", Channel: "C1", TS: "1700000000.000100"}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := Open(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	applied, err := Migrate(ctx, db)
	if err != nil {
		t.Fatalf("first migrate: %v", err)
	}
	if applied != len(migrations) {
		t.Errorf("applied = %d, want %d", applied, len(migrations))
	}

	applied, err = Migrate(ctx, db)
	if err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if applied != 0 {
		t.Errorf("second migrate applied %d migrations", applied)
	}

	version, err := Version(ctx, db)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if version != LatestVersion() {
		t.Errorf("version = %d, want %d", version, LatestVersion())
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open("mysql", "whatever"); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestPollRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPollRepository(setupDB(t))

	if _, err := repo.GetByID(ctx, testID); !errors.Is(err, usecase.ErrPollNotFound) {
		t.Fatalf("GetByID on empty store = %v, want ErrPollNotFound", err)
	}

	poll := &domain.Poll{
		ID:        testID,
		Question:  "Lunch?",
		Options:   []domain.PollOption{{ID: 0, Label: "Pizza"}, {ID: 1, Label: "Sushi"}},
		Settings:  domain.Settings{Anonymous: true, Limited: true, Limit: 1},
		Creator:   "U1",
		CreatedAt: time.UnixMilli(1700000000123).UTC(),
	}
	if err := repo.Save(ctx, poll); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.GetByID(ctx, testID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.CreatedAt.Equal(poll.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, poll.CreatedAt)
	}
	got.CreatedAt = poll.CreatedAt
	if !reflect.DeepEqual(got, poll) {
		t.Errorf("GetByID = %+v, want %+v", got, poll)
	}

	poll.Question = "Dinner?"
	if err = repo.Save(ctx, poll); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	if got, _ = repo.GetByID(ctx, testID); got.Question != "Dinner?" {
		t.Errorf("Question after overwrite = %q", got.Question)
	}

	if err = repo.DeleteByID(ctx, testID); err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}
	if _, err = repo.GetByID(ctx, testID); !errors.Is(err, usecase.ErrPollNotFound) {
		t.Errorf("GetByID after delete = %v, want ErrPollNotFound", err)
	}
}

func TestVoteRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewVoteRepository(setupDB(t))

	if _, err := repo.Get(ctx, testID); !errors.Is(err, usecase.ErrVotesNotFound) {
		t.Fatalf("Get on empty store = %v, want ErrVotesNotFound", err)
	}

	votes := domain.VoteTable{0: {"U1", "U2"}, 1: {}, 2: {"U2"}}
	if err := repo.Upsert(ctx, testID, votes); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got, err := repo.Get(ctx, testID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(got, votes) {
		t.Errorf("Get = %v, want %v", got, votes)
	}

	votes.Toggle(0, "U1")
	if err = repo.Upsert(ctx, testID, votes); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	if got, _ = repo.Get(ctx, testID); !reflect.DeepEqual(got[0], []string{"U2"}) {
		t.Errorf("voters after toggle = %v", got[0])
	}

	if err = repo.DeleteByPoll(ctx, testID); err != nil {
		t.Fatalf("DeleteByPoll: %v", err)
	}
	if _, err = repo.Get(ctx, testID); !errors.Is(err, usecase.ErrVotesNotFound) {
		t.Errorf("Get after delete = %v, want ErrVotesNotFound", err)
	}
}

func TestFlagRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewFlagRepository(setupDB(t))

	if _, err := repo.Get(ctx, testID, domain.FlagClosed); !errors.Is(err, usecase.ErrFlagNotFound) {
		t.Fatalf("Get on empty store = %v, want ErrFlagNotFound", err)
	}

	for _, step := range []bool{true, false, true} {
		if err := repo.Set(ctx, testID, domain.FlagClosed, step); err != nil {
			t.Fatalf("Set(%v): %v", step, err)
		}
		got, err := repo.Get(ctx, testID, domain.FlagClosed)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got != step {
			t.Errorf("closed = %v, want %v", got, step)
		}
	}

	if _, err := repo.Get(ctx, testID, domain.FlagHidden); !errors.Is(err, usecase.ErrFlagNotFound) {
		t.Errorf("hidden flag leaked from closed: %v", err)
	}

	if err := repo.DeleteByPoll(ctx, testID); err != nil {
		t.Fatalf("DeleteByPoll: %v", err)
	}
	if _, err := repo.Get(ctx, testID, domain.FlagClosed); !errors.Is(err, usecase.ErrFlagNotFound) {
		t.Errorf("Get after delete = %v, want ErrFlagNotFound", err)
	}
}
