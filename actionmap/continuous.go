package actionmap

import (
	"fmt"
	"math"

	"abtsolver/model"
)

// ChooserData is opaque data a Chooser strategy attaches to a sampled
// construction-data vector (e.g. the parameters of the proposal
// distribution that produced it). It is serialized/deserialized through an
// explicit registry rather than auto-registered subclasses — see
// ChooserRegistry.
type ChooserData interface {
	Tag() string
	Marshal() []byte
}

// ChooserLoader reconstructs a ChooserData value from its serialized form.
type ChooserLoader func([]byte) (ChooserData, error)

// ChooserRegistry maps a string tag to a loader. It is built by the caller;
// neither NewContinuous nor persist.ReadTree takes a registry.
type ChooserRegistry map[string]ChooserLoader

func NewChooserRegistry() ChooserRegistry { return make(ChooserRegistry) }

func (r ChooserRegistry) Register(tag string, loader ChooserLoader) { r[tag] = loader }

func (r ChooserRegistry) Load(tag string, data []byte) (ChooserData, error) {
	loader, ok := r[tag]
	if !ok {
		return nil, fmt.Errorf("actionmap: unknown chooser-data tag %q", tag)
	}
	return loader(data)
}

// Chooser draws a new construction-data vector, optionally guided by the
// vectors already tried at this mapping.
type Chooser interface {
	ChooseNext(tried [][]float64) ([]float64, ChooserData)
}

// quantize rounds a construction-data vector to a fixed precision so that
// very similar actions hash/equal into the same entry, per §4.2's
// "quotient very similar actions" requirement.
func quantize(v []float64) string {
	const precision = 1e-6
	s := ""
	for i, x := range v {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%.6f", math.Round(x/precision)*precision)
	}
	return s
}

// Continuous is the action mapping variant keyed by construction-data
// vector, per §4.2.
type Continuous struct {
	makeAction     func(constructionData []float64) model.Action
	chooser        Chooser
	fixed          [][]float64
	randomizeFixed bool
	fixedIdx       int

	entries   map[string]*Entry
	order     []*Entry
	tried     [][]float64
	nextOrder int
}

// NewContinuous builds an empty continuous mapping. fixed is the pool's
// seed construction-data list for hybrid action spaces (may be nil);
// randomizeFixed selects the hint flag from §4.2 for whether fixed entries
// are offered in-order or in a caller-supplied random order (the caller
// shuffles fixed itself when randomizeFixed is set, to keep the mapping
// free of direct RNG access per the single-threaded-RNG design note).
func NewContinuous(makeAction func([]float64) model.Action, chooser Chooser, fixed [][]float64, randomizeFixed bool) *Continuous {
	return &Continuous{
		makeAction:     makeAction,
		chooser:        chooser,
		fixed:          fixed,
		randomizeFixed: randomizeFixed,
		entries:        make(map[string]*Entry),
	}
}

func (c *Continuous) keyFor(a model.Action) (string, []float64) {
	cd := a.(model.ConstructionDataProvider).ConstructionData()
	return quantize(cd), cd
}

func (c *Continuous) HasChild(a model.Action) bool {
	key, _ := c.keyFor(a)
	e, ok := c.entries[key]
	return ok && e.ChildID != 0
}

func (c *Continuous) Entry(a model.Action) *Entry {
	key, _ := c.keyFor(a)
	if e, ok := c.entries[key]; ok {
		return e
	}
	e := &Entry{Action: a, Legal: false, order: c.nextOrder}
	c.nextOrder++
	c.entries[key] = e
	c.order = append(c.order, e)
	return e
}

func (c *Continuous) Entries() []*Entry {
	out := make([]*Entry, 0, len(c.order))
	for _, e := range c.order {
		if e.ChildID != 0 || e.VisitCount > 0 {
			out = append(out, e)
		}
	}
	return out
}

// NextActionToTry first exhausts the fixed seed list, then falls back to
// the chooser strategy.
func (c *Continuous) NextActionToTry() (model.Action, bool) {
	if c.fixedIdx < len(c.fixed) {
		cd := c.fixed[c.fixedIdx]
		c.fixedIdx++
		return c.offer(cd)
	}
	if c.chooser == nil {
		return nil, false
	}
	cd, _ := c.chooser.ChooseNext(c.tried)
	if cd == nil {
		return nil, false
	}
	return c.offer(cd)
}

func (c *Continuous) offer(cd []float64) (model.Action, bool) {
	a := c.makeAction(cd)
	e := c.Entry(a)
	e.Legal = true
	c.tried = append(c.tried, cd)
	return a, true
}

func (c *Continuous) TotalVisitCount() int {
	total := 0
	for _, e := range c.order {
		total += e.VisitCount
	}
	return total
}

func (c *Continuous) NumberOfLegalActions() int {
	n := 0
	for _, e := range c.order {
		if e.Legal {
			n++
		}
	}
	return n
}
