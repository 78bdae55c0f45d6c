package bhavbook

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"
)

// Observation is one row of the drill-down audit trail: what a (instrument,
// broker, source file) position looked like on one day.
type Observation struct {
	On       Date   `json:"on"`
	Security string `json:"security"`
	Broker   string `json:"broker"`
	File     string `json:"file"`
	Quantity int64  `json:"quantity"`
	Cost     Money  `json:"cost"`  // purchase cost per share, weighted across merged lots
	Price    Money  `json:"price"` // the day's closing price
	Value    Money  `json:"value"` // cumulative market value for the key
}

type trailKey struct {
	on       Date
	security string
	broker   string
	file     string
}

// Trail is the time-series audit trail the walk appends to, one observation
// per (day, instrument, broker, file).
type Trail struct {
	entries []*Observation
	index   map[trailKey]*Observation
}

// NewTrail returns an empty trail.
func NewTrail() *Trail {
	return &Trail{index: make(map[trailKey]*Observation)}
}

// Len returns the number of observations.
func (t *Trail) Len() int { return len(t.entries) }

// Record appends an observation, merging it into an existing row when the
// (day, security, broker, file) key matches. A merge keeps the
// quantity-weighted average of the costs, sums quantities and market
// values, and lets the newest price win: several purchase lots of the same
// instrument landing on one observation day converge into a single row
// without losing cost information.
func (t *Trail) Record(on Date, security, broker, file string, quantity int64, cost, price, value Money) {
	key := trailKey{on, security, broker, file}
	if o, ok := t.index[key]; ok {
		oldQty := decimal.NewFromInt(o.Quantity)
		newQty := decimal.NewFromInt(quantity)
		total := o.Quantity + quantity
		if total != 0 {
			weighted := o.Cost.Decimal().Mul(oldQty).Add(cost.Decimal().Mul(newQty)).
				Div(decimal.NewFromInt(total))
			o.Cost = MD(weighted)
		}
		o.Quantity = total
		o.Value = o.Value.Add(value)
		o.Price = price // last write wins
		return
	}
	o := &Observation{
		On: on, Security: security, Broker: broker, File: file,
		Quantity: quantity, Cost: cost, Price: price, Value: value,
	}
	t.entries = append(t.entries, o)
	t.index[key] = o
}

// Get returns the observation for an exact key, or nil.
func (t *Trail) Get(on Date, security, broker, file string) *Observation {
	return t.index[trailKey{on, security, broker, file}]
}

// Observations returns all rows sorted by date, then security, broker and
// file, the order the trail persists in.
func (t *Trail) Observations() []*Observation {
	sorted := append([]*Observation(nil), t.entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.On != b.On {
			return a.On.Before(b.On)
		}
		if a.Security != b.Security {
			return a.Security < b.Security
		}
		if a.Broker != b.Broker {
			return a.Broker < b.Broker
		}
		return a.File < b.File
	})
	return sorted
}

// LastDate returns the trail's most recent observation date.
func (t *Trail) LastDate() (Date, bool) {
	var max Date
	for _, o := range t.entries {
		if o.On.After(max) {
			max = o.On
		}
	}
	return max, len(t.entries) > 0
}

// Brokers returns the unique broker names seen in the trail, sorted.
func (t *Trail) Brokers() []string {
	seen := make(map[string]struct{})
	var brokers []string
	for _, o := range t.entries {
		if _, ok := seen[o.Broker]; !ok {
			seen[o.Broker] = struct{}{}
			brokers = append(brokers, o.Broker)
		}
	}
	sort.Strings(brokers)
	return brokers
}

// SnapDate returns the latest date with at least one observation at or
// before 'target'. Reporting windows snap their boundaries with it, since
// the trail has no rows on market holidays.
func (t *Trail) SnapDate(target Date) (Date, bool) {
	var best Date
	found := false
	for _, o := range t.entries {
		if o.On.After(target) {
			continue
		}
		if !found || o.On.After(best) {
			best, found = o.On, true
		}
	}
	return best, found
}

// MergeTrail combines a previously persisted trail with a freshly recorded
// one, keeping old observations as-is and appending only observations
// strictly after the old trail's last date.
func MergeTrail(old, new *Trail) *Trail {
	merged := NewTrail()
	for _, o := range old.entries {
		merged.Record(o.On, o.Security, o.Broker, o.File, o.Quantity, o.Cost, o.Price, o.Value)
	}
	last, hasOld := old.LastDate()
	for _, o := range new.entries {
		if hasOld && !o.On.After(last) {
			continue
		}
		merged.Record(o.On, o.Security, o.Broker, o.File, o.Quantity, o.Cost, o.Price, o.Value)
	}
	return merged
}

// DecodeTrail reads a trail from its JSONL form.
func DecodeTrail(r io.Reader) (*Trail, error) {
	t := NewTrail()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var o Observation
		if err := json.Unmarshal(line, &o); err != nil {
			return nil, fmt.Errorf("cannot parse trail line %q: %w", string(line), err)
		}
		t.Record(o.On, o.Security, o.Broker, o.File, o.Quantity, o.Cost, o.Price, o.Value)
	}
	return t, scanner.Err()
}

// EncodeTrail writes the trail in its JSONL form, in Observations order.
func EncodeTrail(w io.Writer, t *Trail) error {
	for _, o := range t.Observations() {
		data, err := json.Marshal(o)
		if err != nil {
			return fmt.Errorf("cannot encode trail row for %s on %s: %w", o.Security, o.On, err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return err
		}
	}
	return nil
}
