package selector

import (
	"context"
	"net/url"
	"strconv"
	"sync"

	"github.com/supremetuning/tuningcalc/internal/models"
)

// Level identifies one step of the vehicle selection flow
type Level int

const (
	LevelBrand Level = iota
	LevelGroup
	LevelModel
	LevelType
	LevelEngine
)

func (l Level) String() string {
	switch l {
	case LevelBrand:
		return "brand"
	case LevelGroup:
		return "group"
	case LevelModel:
		return "model"
	case LevelType:
		return "type"
	case LevelEngine:
		return "engine"
	}
	return "unknown"
}

// Fetcher loads the options for each level of the flow
type Fetcher interface {
	Brands(ctx context.Context) ([]models.Brand, error)
	BrandHasGroups(ctx context.Context, brandID int) (bool, error)
	Groups(ctx context.Context, brandID int) ([]models.Group, error)
	Models(ctx context.Context, brandID int, groupID *int) ([]models.Model, error)
	Types(ctx context.Context, modelID int) ([]models.VehicleType, error)
	Engines(ctx context.Context, typeID int) ([]models.Engine, error)
}

// Selection holds the ids chosen so far. Zero means not selected;
// Group may legitimately stay zero for brands without groups.
type Selection struct {
	BrandID   int  `json:"brandId,omitempty"`
	GroupID   int  `json:"groupId,omitempty"`
	ModelID   int  `json:"modelId,omitempty"`
	TypeID    int  `json:"typeId,omitempty"`
	EngineID  int  `json:"engineId,omitempty"`
	HasGroups bool `json:"hasGroups"`
}

// State is the full flow state returned to the client after each step
type State struct {
	Selection Selection   `json:"selection"`
	NextLevel string      `json:"nextLevel"`
	Options   interface{} `json:"options"`
	CanSearch bool        `json:"canSearch"`
}

// Flow drives the cascading brand/model/type/engine selection. Each
// selection invalidates everything downstream of it, and responses for
// superseded selections are discarded via a generation counter, so a
// slow fetch can never repopulate a step the user has already changed.
type Flow struct {
	fetcher Fetcher

	mu         sync.Mutex
	selection  Selection
	generation uint64
}

// NewFlow creates a selection flow backed by the given fetcher
func NewFlow(fetcher Fetcher) *Flow {
	return &Flow{fetcher: fetcher}
}

// NewFlowFrom creates a flow primed with a previously returned selection,
// so a client can continue its own flow across stateless requests.
func NewFlowFrom(fetcher Fetcher, sel Selection) *Flow {
	return &Flow{fetcher: fetcher, selection: sel}
}

// Selection returns a copy of the current selection
func (f *Flow) Selection() Selection {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selection
}

// begin invalidates in-flight fetches and applies the selection change
// under the lock, returning the generation that guards the fetch.
func (f *Flow) begin(apply func(*Selection)) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generation++
	apply(&f.selection)
	return f.generation
}

// stale reports whether a fetch started at generation gen has been
// superseded by a newer selection.
func (f *Flow) stale(gen uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return gen != f.generation
}

// ErrStale is returned when a fetch result arrives after the selection
// it belongs to has been replaced.
var ErrStale = &staleError{}

type staleError struct{}

func (*staleError) Error() string { return "selection changed while loading" }

// Reset clears the whole flow back to brand selection
func (f *Flow) Reset(ctx context.Context) (*State, error) {
	gen := f.begin(func(sel *Selection) {
		*sel = Selection{}
	})

	brands, err := f.fetcher.Brands(ctx)
	if err != nil {
		return nil, err
	}
	if f.stale(gen) {
		return nil, ErrStale
	}
	return f.state(LevelBrand.String(), brands), nil
}

// SelectBrand chooses a brand and loads either its groups or its models
func (f *Flow) SelectBrand(ctx context.Context, brandID int) (*State, error) {
	gen := f.begin(func(sel *Selection) {
		*sel = Selection{BrandID: brandID}
	})

	hasGroups, err := f.fetcher.BrandHasGroups(ctx, brandID)
	if err != nil {
		return nil, err
	}

	if hasGroups {
		groups, err := f.fetcher.Groups(ctx, brandID)
		if err != nil {
			return nil, err
		}
		if f.stale(gen) {
			return nil, ErrStale
		}
		f.mu.Lock()
		f.selection.HasGroups = true
		f.mu.Unlock()
		return f.state(LevelGroup.String(), groups), nil
	}

	ms, err := f.fetcher.Models(ctx, brandID, nil)
	if err != nil {
		return nil, err
	}
	if f.stale(gen) {
		return nil, ErrStale
	}
	return f.state(LevelModel.String(), ms), nil
}

// SelectGroup chooses a group and loads its models. A groupID of zero
// selects the brand's ungrouped models.
func (f *Flow) SelectGroup(ctx context.Context, groupID int) (*State, error) {
	var brandID int
	gen := f.begin(func(sel *Selection) {
		brandID = sel.BrandID
		sel.GroupID = groupID
		sel.ModelID = 0
		sel.TypeID = 0
		sel.EngineID = 0
	})

	var gid *int
	if groupID != 0 {
		gid = &groupID
	}
	ms, err := f.fetcher.Models(ctx, brandID, gid)
	if err != nil {
		return nil, err
	}
	if f.stale(gen) {
		return nil, ErrStale
	}
	return f.state(LevelModel.String(), ms), nil
}

// SelectModel chooses a model and loads its types
func (f *Flow) SelectModel(ctx context.Context, modelID int) (*State, error) {
	gen := f.begin(func(sel *Selection) {
		sel.ModelID = modelID
		sel.TypeID = 0
		sel.EngineID = 0
	})

	ts, err := f.fetcher.Types(ctx, modelID)
	if err != nil {
		return nil, err
	}
	if f.stale(gen) {
		return nil, ErrStale
	}
	return f.state(LevelType.String(), ts), nil
}

// SelectType chooses a type and loads its engines
func (f *Flow) SelectType(ctx context.Context, typeID int) (*State, error) {
	gen := f.begin(func(sel *Selection) {
		sel.TypeID = typeID
		sel.EngineID = 0
	})

	es, err := f.fetcher.Engines(ctx, typeID)
	if err != nil {
		return nil, err
	}
	if f.stale(gen) {
		return nil, ErrStale
	}
	return f.state(LevelEngine.String(), es), nil
}

// SelectEngine completes the flow
func (f *Flow) SelectEngine(engineID int) *State {
	f.begin(func(sel *Selection) {
		sel.EngineID = engineID
	})
	return f.state("done", nil)
}

// CanSearch reports whether an engine has been chosen
func (f *Flow) CanSearch() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selection.EngineID != 0
}

func (f *Flow) state(nextLevel string, options interface{}) *State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &State{
		Selection: f.selection,
		NextLevel: nextLevel,
		Options:   options,
		CanSearch: f.selection.EngineID != 0,
	}
}

// ResultPath builds the percent-encoded result page path for a completed
// selection, or an empty string if the flow is not complete.
func (f *Flow) ResultPath() string {
	f.mu.Lock()
	sel := f.selection
	f.mu.Unlock()

	if sel.EngineID == 0 {
		return ""
	}
	return "/result?" + url.Values{
		"engineId": {strconv.Itoa(sel.EngineID)},
	}.Encode()
}
