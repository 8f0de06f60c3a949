// Package journal keeps a history of what the panel did. It is a record for
// reporting only: queues always start empty and are never rebuilt from it.
package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"git.mills.io/prologic/bitcask"

	"callboard/clock"
	"callboard/dispatcher"
	"callboard/ticket"
)

const totalsKey = "totals"

// Journal implements dispatcher.Listener on top of a bitcask store.
type Journal struct {
	db      *bitcask.Bitcask
	session string
	seq     uint64
	totals  Totals
	clock   clock.Clock
	logger  *slog.Logger
}

// Open opens (or creates) the store at path and starts a new session.
func Open(path, session string, clk clock.Clock, logger *slog.Logger) (*Journal, error) {
	db, err := bitcask.Open(path, bitcask.WithMaxValueSize(64*1024))
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}

	if clk == nil {
		clk = clock.Real()
	}

	j := &Journal{
		db:      db,
		session: session,
		clock:   clk,
		logger:  logger,
	}

	totals, err := j.loadTotals()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	totals.Sessions++
	j.totals = totals
	if err := j.put(totalsKey, j.totals); err != nil {
		_ = db.Close()
		return nil, err
	}

	return j, nil
}

func (j *Journal) Session() string {
	return j.session
}

func (j *Journal) Submitted(t ticket.Ticket) {
	j.totals.Submitted[t.Class]++
	j.append(Record{Kind: KindSubmitted, Class: t.Class, Ticket: &t})
}

func (j *Journal) Rejected(class ticket.Class, _ error) {
	j.totals.Rejected[class]++
	j.append(Record{Kind: KindRejected, Class: class})
}

func (j *Journal) Served(ev dispatcher.AdvanceEvent) {
	served := ev.Served
	j.totals.Served[served.Class]++
	j.append(Record{
		Kind:        KindServed,
		Class:       served.Class,
		Ticket:      &served,
		CallsServed: ev.CallsServed,
		Alert:       ev.Alert,
	})
}

func (j *Journal) AlertChanged(enabled bool) {
	j.append(Record{Kind: KindAlert, Alert: enabled})
}

// Totals returns the lifetime counters including this session.
func (j *Journal) Totals() Totals {
	out := newTotals()
	out.Sessions = j.totals.Sessions
	for k, v := range j.totals.Submitted {
		out.Submitted[k] = v
	}
	for k, v := range j.totals.Rejected {
		out.Rejected[k] = v
	}
	for k, v := range j.totals.Served {
		out.Served[k] = v
	}
	return out
}

// Records returns every record written under session, oldest first.
func (j *Journal) Records(session string) ([]Record, error) {
	var records []Record
	for seq := uint64(1); ; seq++ {
		var r Record
		err := j.get(recordKey(session, seq), &r)
		if errors.Is(err, bitcask.ErrKeyNotFound) {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, r)
	}
}

// Maintain merges the store every interval until ctx is done.
func (j *Journal) Maintain(ctx context.Context, interval time.Duration) {
	ticker := j.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Merge()
		}
	}
}

func (j *Journal) Merge() {
	j.logger.Info("Merging journal to reclaim space...")
	if err := j.db.Merge(); err != nil {
		j.logger.Error("Error merging journal", "error", err)
		return
	}
	j.logger.Info("Journal merge complete.")
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) append(r Record) {
	j.seq++
	r.Session = j.session
	r.Seq = j.seq
	r.At = j.clock.Now()

	if err := j.put(recordKey(j.session, j.seq), r); err != nil {
		j.logger.Error("Failed to write journal record", "kind", r.Kind, "error", err)
		return
	}
	if err := j.put(totalsKey, j.totals); err != nil {
		j.logger.Error("Failed to write journal totals", "error", err)
	}
}

func (j *Journal) loadTotals() (Totals, error) {
	totals := newTotals()
	err := j.get(totalsKey, &totals)
	if err != nil && !errors.Is(err, bitcask.ErrKeyNotFound) {
		return Totals{}, fmt.Errorf("read journal totals: %w", err)
	}
	if totals.Submitted == nil {
		totals.Submitted = make(map[ticket.Class]uint64)
	}
	if totals.Rejected == nil {
		totals.Rejected = make(map[ticket.Class]uint64)
	}
	if totals.Served == nil {
		totals.Served = make(map[ticket.Class]uint64)
	}
	return totals, nil
}

func (j *Journal) put(name string, v any) error {
	data, err := encode(v)
	if err != nil {
		return err
	}
	return j.db.Put(storeKey(name), data)
}

func (j *Journal) get(name string, v any) error {
	data, err := j.db.Get(storeKey(name))
	if err != nil {
		return err
	}
	return decode(data, v)
}

func recordKey(session string, seq uint64) string {
	return fmt.Sprintf("%s/%010d", session, seq)
}
