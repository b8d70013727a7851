package mapping

import (
	"testing"

	"github.com/triade-beauty/intake/internal/domain"
)

func TestArtistRegistryRoundTrip(t *testing.T) {
	registry := NewArtistRegistry()

	for _, role := range []ArtistRole{RoleHairstylist, RoleMakeupArtist} {
		for _, name := range registry.Names(role) {
			id, ok := registry.ResolveID(role, name)
			if !ok {
				t.Fatalf("%s: ResolveID(%q) failed", role, name)
			}
			back, ok := registry.ResolveName(role, id)
			if !ok || back != name {
				t.Fatalf("%s: round trip %q -> %d -> %q", role, name, id, back)
			}
		}
	}
}

func TestArtistRegistryKnownIDs(t *testing.T) {
	registry := NewArtistRegistry()

	tests := []struct {
		role ArtistRole
		name string
		id   int64
	}{
		{RoleMakeupArtist, "Lola Carvalho (founder artist)", 1260830806},
		{RoleMakeupArtist, "Teresa Pilkington (founder artist)", 1260830819},
		{RoleMakeupArtist, "Miguel Stapleton (founder artist)", 1260830830},
		{RoleHairstylist, "Agne Kanapeckaite", 1265638640},
		{RoleHairstylist, "Olga Hilário", 1909963655},
	}
	for _, tc := range tests {
		id, ok := registry.ResolveID(tc.role, tc.name)
		if !ok || id != tc.id {
			t.Fatalf("ResolveID(%s, %q) = %d ok=%v, want %d", tc.role, tc.name, id, ok, tc.id)
		}
	}
}

func TestArtistRegistryUnknownName(t *testing.T) {
	registry := NewArtistRegistry()
	if id, ok := registry.ResolveID(RoleMakeupArtist, "Nobody Here"); ok {
		t.Fatalf("expected miss for unknown name, got %d", id)
	}
	if name, ok := registry.ResolveName(RoleHairstylist, 42); ok {
		t.Fatalf("expected miss for unknown id, got %q", name)
	}
}

func TestArtistRegistryOverrides(t *testing.T) {
	registry := NewArtistRegistry(
		WithRelationBoardIDs(100, 200),
		WithMakeupArtists(map[string]int64{"Test Artist": 7}),
	)

	relation := registry.RelationValue(RoleMakeupArtist, 7)
	if relation.BoardID != 200 {
		t.Fatalf("mua board id = %d, want 200", relation.BoardID)
	}
	relation = registry.RelationValue(RoleHairstylist, 1)
	if relation.BoardID != 100 {
		t.Fatalf("hairstylist board id = %d, want 100", relation.BoardID)
	}
	if id, ok := registry.ResolveID(RoleMakeupArtist, "Test Artist"); !ok || id != 7 {
		t.Fatalf("override table not applied, got %d ok=%v", id, ok)
	}
	if _, ok := registry.ResolveID(RoleMakeupArtist, "Lola Carvalho (founder artist)"); ok {
		t.Fatal("default table should be replaced, not merged")
	}
}

func TestArtistSelections(t *testing.T) {
	registry := NewArtistRegistry()

	tests := []struct {
		name       string
		sub        domain.Submission
		wantMUA    int64
		wantHair   int64
	}{
		{
			name:    "numeric muaSelection used directly",
			sub:     domain.Submission{MUASelection: "1260830806"},
			wantMUA: 1260830806,
		},
		{
			name:    "muaSelection display name resolved",
			sub:     domain.Submission{MUASelection: "Teresa Pilkington (founder artist)"},
			wantMUA: 1260830819,
		},
		{
			name: "unknown muaSelection does not fall through to makeupArtist",
			sub: domain.Submission{
				MUASelection: "Unknown Person",
				MakeupArtist: "Lola Carvalho (founder artist)",
			},
		},
		{
			name:    "makeupArtist consulted when muaSelection empty",
			sub:     domain.Submission{MakeupArtist: "Miguel Stapleton (founder artist)"},
			wantMUA: 1260830830,
		},
		{
			name:     "hairstylistChoice beats hairstylist",
			sub:      domain.Submission{HairstylistChoice: "Eric Ribeiro", Hairstylist: "Lília Costa"},
			wantHair: 1265638755,
		},
		{
			name:     "hairstylist fallback",
			sub:      domain.Submission{Hairstylist: "Lília Costa"},
			wantHair: 1265638655,
		},
		{
			name: "sentinel choices resolve nothing",
			sub: domain.Submission{
				Hairstylist:  domain.UndecidedHairstylistChoice,
				MakeupArtist: domain.UndecidedMakeupArtistChoice,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			values := registry.ArtistSelections(tc.sub)

			mua, haveMUA := values[ColumnMUAs].(LinkedItem)
			if tc.wantMUA == 0 && haveMUA {
				t.Fatalf("unexpected mua relation %+v", mua)
			}
			if tc.wantMUA != 0 {
				if !haveMUA {
					t.Fatal("missing mua relation")
				}
				if mua.BoardID != DefaultMUABoardID || len(mua.ItemIDs) != 1 || mua.ItemIDs[0] != tc.wantMUA {
					t.Fatalf("mua relation = %+v, want item %d", mua, tc.wantMUA)
				}
			}

			hair, haveHair := values[ColumnHairstylists].(LinkedItem)
			if tc.wantHair == 0 && haveHair {
				t.Fatalf("unexpected hairstylist relation %+v", hair)
			}
			if tc.wantHair != 0 {
				if !haveHair {
					t.Fatal("missing hairstylist relation")
				}
				if hair.BoardID != DefaultHairstylistBoardID || len(hair.ItemIDs) != 1 || hair.ItemIDs[0] != tc.wantHair {
					t.Fatalf("hairstylist relation = %+v, want item %d", hair, tc.wantHair)
				}
			}
		})
	}
}
