package mapping

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/triade-beauty/intake/internal/domain"
)

// ArtistRole partitions the registry: each role lives on its own relation
// board and owns its own display-name vocabulary.
type ArtistRole string

const (
	RoleHairstylist  ArtistRole = "hairstylist"
	RoleMakeupArtist ArtistRole = "makeup"
)

// Default relation-board ids for the two roles. The live board is
// authoritative; these can be overridden through configuration without a
// rebuild (see config.MondayConfig).
const (
	DefaultMUABoardID         int64 = 1260830748
	DefaultHairstylistBoardID int64 = 1260998854
)

var defaultHairstylistIDs = map[string]int64{
	"Agne Kanapeckaite": 1265638640,
	"Lília Costa":       1265638655,
	"Andreia de Matos":  1265638749,
	"Eric Ribeiro":      1265638755,
	"Oksana Grybinnyk":  1265969559,
	"Joana Carvalho":    1909955242,
	"Olga Hilário":      1909963655,
}

var defaultMakeupArtistIDs = map[string]int64{
	"Lola Carvalho (founder artist)":      1260830806,
	"Teresa Pilkington (founder artist)":  1260830819,
	"Miguel Stapleton (founder artist)":   1260830830,
	"Inês Aguiar (founder artist)":        1265637834,
	"Sofia Monteiro (fresh artist)":       1265637910,
	"Rita Nunes (fresh artist)":           1555231395,
	"Filipa Wahnon (fresh artist)":        1909973857,
	"Ana Neves (resident artist)":         1260830858,
	"Ana Roma (resident artist)":          1260830847,
	"Sara Jogo (resident artist)":         1909966794,
}

// MakeupSelectionFields is the ordered field precedence for make-up artist
// resolution: the MUA form's muaSelection (numeric id or display name) beats
// the inquiry form's makeupArtist (display name only).
var MakeupSelectionFields = []string{"muaSelection", "makeupArtist"}

// HairstylistSelectionFields is the ordered field precedence for hairstylist
// resolution: the MUA form's hairstylistChoice beats the inquiry form's
// hairstylist. Both accept display names only.
var HairstylistSelectionFields = []string{"hairstylistChoice", "hairstylist"}

var numericID = regexp.MustCompile(`^\d+$`)

func parseArtistID(raw string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
}

type roleTable struct {
	boardID int64
	byName  map[string]int64
	byID    map[int64]string
}

// ArtistRegistry is the bidirectional name/id mapping for both roles. It is
// built once at process start and never mutated afterwards.
type ArtistRegistry struct {
	roles map[ArtistRole]roleTable
}

// RegistryOption customises registry construction.
type RegistryOption func(*registryConfig)

type registryConfig struct {
	hairBoardID int64
	muaBoardID  int64
	hairIDs     map[string]int64
	muaIDs      map[string]int64
}

// WithRelationBoardIDs overrides the relation-board ids for both roles.
// Zero values keep the defaults.
func WithRelationBoardIDs(hairstylistBoardID, muaBoardID int64) RegistryOption {
	return func(cfg *registryConfig) {
		if hairstylistBoardID > 0 {
			cfg.hairBoardID = hairstylistBoardID
		}
		if muaBoardID > 0 {
			cfg.muaBoardID = muaBoardID
		}
	}
}

// WithHairstylists replaces the hairstylist name/id table.
func WithHairstylists(ids map[string]int64) RegistryOption {
	return func(cfg *registryConfig) {
		if len(ids) > 0 {
			cfg.hairIDs = ids
		}
	}
}

// WithMakeupArtists replaces the make-up artist name/id table.
func WithMakeupArtists(ids map[string]int64) RegistryOption {
	return func(cfg *registryConfig) {
		if len(ids) > 0 {
			cfg.muaIDs = ids
		}
	}
}

// NewArtistRegistry builds the immutable registry from the default tables and
// any overrides.
func NewArtistRegistry(opts ...RegistryOption) *ArtistRegistry {
	cfg := registryConfig{
		hairBoardID: DefaultHairstylistBoardID,
		muaBoardID:  DefaultMUABoardID,
		hairIDs:     defaultHairstylistIDs,
		muaIDs:      defaultMakeupArtistIDs,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &ArtistRegistry{
		roles: map[ArtistRole]roleTable{
			RoleHairstylist:  newRoleTable(cfg.hairBoardID, cfg.hairIDs),
			RoleMakeupArtist: newRoleTable(cfg.muaBoardID, cfg.muaIDs),
		},
	}
}

func newRoleTable(boardID int64, byName map[string]int64) roleTable {
	table := roleTable{
		boardID: boardID,
		byName:  make(map[string]int64, len(byName)),
		byID:    make(map[int64]string, len(byName)),
	}
	for name, id := range byName {
		table.byName[name] = id
		table.byID[id] = name
	}
	return table
}

// ResolveID maps an artist display name to its external id.
func (r *ArtistRegistry) ResolveID(role ArtistRole, name string) (int64, bool) {
	table, ok := r.roles[role]
	if !ok {
		return 0, false
	}
	id, ok := table.byName[name]
	return id, ok
}

// ResolveName maps an external id back to the artist display name.
func (r *ArtistRegistry) ResolveName(role ArtistRole, id int64) (string, bool) {
	table, ok := r.roles[role]
	if !ok {
		return "", false
	}
	name, ok := table.byID[id]
	return name, ok
}

// Names returns the display names registered for a role, unordered.
func (r *ArtistRegistry) Names(role ArtistRole) []string {
	table, ok := r.roles[role]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(table.byName))
	for name := range table.byName {
		names = append(names, name)
	}
	return names
}

// RelationValue builds the relation-column payload pointing at the artist's
// item on the role's board.
func (r *ArtistRegistry) RelationValue(role ArtistRole, id int64) LinkedItem {
	return LinkedItem{BoardID: r.roles[role].boardID, ItemIDs: []int64{id}}
}

// ArtistSelections resolves the artist relation columns from a submission.
// Resolution never fails: when nothing matches, the column is simply left out
// of the payload.
func (r *ArtistRegistry) ArtistSelections(sub domain.Submission) ColumnValues {
	values := ColumnValues{}

	if id, ok := r.resolveMakeupSelection(sub); ok {
		values[ColumnMUAs] = r.RelationValue(RoleMakeupArtist, id)
	}
	if id, ok := r.resolveHairstylistSelection(sub); ok {
		values[ColumnHairstylists] = r.RelationValue(RoleHairstylist, id)
	}
	return values
}

// resolveMakeupSelection walks MakeupSelectionFields in priority order: a
// numeric muaSelection is used directly, a non-numeric one is treated as a
// display name, and only then is the legacy makeupArtist name consulted.
func (r *ArtistRegistry) resolveMakeupSelection(sub domain.Submission) (int64, bool) {
	if sel := strings.TrimSpace(sub.MUASelection); sel != "" {
		if numericID.MatchString(sel) {
			id, err := strconv.ParseInt(sel, 10, 64)
			if err == nil {
				return id, true
			}
			return 0, false
		}
		if id, ok := r.ResolveID(RoleMakeupArtist, sel); ok {
			return id, true
		}
		return 0, false
	}
	if id, ok := r.ResolveID(RoleMakeupArtist, sub.MakeupArtist); ok {
		return id, true
	}
	return 0, false
}

func (r *ArtistRegistry) resolveHairstylistSelection(sub domain.Submission) (int64, bool) {
	if id, ok := r.ResolveID(RoleHairstylist, sub.HairstylistChoice); ok {
		return id, true
	}
	if id, ok := r.ResolveID(RoleHairstylist, sub.Hairstylist); ok {
		return id, true
	}
	return 0, false
}
