package game

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
		db.Close()
	})
	return sqlx.NewDb(db, "postgres"), mock
}

// jsonField matches a JSON string argument whose top-level key has the given value.
type jsonField struct {
	key  string
	want interface{}
}

func (j jsonField) Match(v driver.Value) bool {
	var raw []byte
	switch s := v.(type) {
	case string:
		raw = []byte(s)
	case []byte:
		raw = s
	default:
		return false
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return false
	}
	return doc[j.key] == j.want
}

func TestCreateStageRecordsRun(t *testing.T) {
	db, mock := newMockDB(t)
	m := NewManager(db, nil, testConfig())

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO simulation_runs (stage_token, width, height, params, created_at) VALUES ($1,$2,$3,$4::jsonb,$5)`)).
		WithArgs(sqlmock.AnyArg(), 800.0, 600.0, jsonField{"ball_count", 2.0}, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	s, err := m.CreateStage(context.Background(), testParams(2))
	if err != nil {
		t.Fatalf("CreateStage: %v", err)
	}
	if !m.HasDatabase() || s.BallCount() != 2 {
		t.Errorf("unexpected stage %s", s)
	}
}

func TestDeleteStageEndsRun(t *testing.T) {
	db, mock := newMockDB(t)
	m := NewManager(db, nil, testConfig())

	mock.ExpectExec("INSERT INTO simulation_runs").WillReturnResult(sqlmock.NewResult(1, 1))
	s, err := m.CreateStage(context.Background(), testParams(1))
	if err != nil {
		t.Fatal(err)
	}

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE simulation_runs SET ended_at = NOW() WHERE stage_token = $1 AND ended_at IS NULL`)).
		WithArgs(s.Token).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := m.DeleteStage(context.Background(), s.Token); err != nil {
		t.Fatalf("DeleteStage: %v", err)
	}
}

func TestRecordSnapshot(t *testing.T) {
	db, mock := newMockDB(t)
	m := NewManager(db, nil, testConfig())

	f := Frame{Token: "tok", Tick: 600, Balls: []BallState{{X: 1}, {X: 2}}}
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO simulation_snapshots (stage_token, tick, ball_count, frame, created_at) VALUES ($1,$2,$3,$4::jsonb,NOW())`)).
		WithArgs("tok", int64(600), 2, jsonField{"tick", 600.0}).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := m.RecordSnapshot(context.Background(), f); err != nil {
		t.Fatalf("RecordSnapshot: %v", err)
	}
}

func TestRecordSnapshotWrapsDriverError(t *testing.T) {
	db, mock := newMockDB(t)
	m := NewManager(db, nil, testConfig())

	boom := errors.New("connection reset")
	mock.ExpectExec("INSERT INTO simulation_snapshots").WillReturnError(boom)

	err := m.RecordSnapshot(context.Background(), Frame{Token: "tok", Tick: 3})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want it to wrap %v", err, boom)
	}
}

func TestListSnapshotsPaginatesNewestFirst(t *testing.T) {
	db, mock := newMockDB(t)
	m := NewManager(db, nil, testConfig())

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "stage_token", "tick", "ball_count", "frame", "created_at"}).
		AddRow(9, "tok", 1200, 3, []byte(`{"tick":1200}`), now).
		AddRow(8, "tok", 600, 3, []byte(`{"tick":600}`), now)
	mock.ExpectQuery(`FROM simulation_snapshots\s+WHERE stage_token = \$1\s+ORDER BY tick DESC\s+LIMIT \$2 OFFSET \$3`).
		WithArgs("tok", 2, 4).
		WillReturnRows(rows)

	snaps, err := m.ListSnapshots(context.Background(), "tok", 2, 4)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(snaps) != 2 || snaps[0].Tick != 1200 || snaps[1].Tick != 600 {
		t.Fatalf("snapshots = %+v", snaps)
	}
	if string(snaps[0].Frame) != `{"tick":1200}` || snaps[0].BallCount != 3 {
		t.Errorf("first snapshot = %+v", snaps[0])
	}
}

func TestSnapshotSinkWritesThroughManager(t *testing.T) {
	db, mock := newMockDB(t)
	m := NewManager(db, nil, testConfig())
	sink := NewSnapshotSink(m, 2)

	mock.ExpectExec("INSERT INTO simulation_snapshots").
		WithArgs("tok", int64(2), 0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	for tick := int64(1); tick <= 3; tick++ {
		sink.PublishFrame(context.Background(), Frame{Token: "tok", Tick: tick})
	}
}
