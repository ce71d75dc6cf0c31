package feature

import (
	"testing"

	feasttypes "github.com/feast-dev/feast/sdk/go/protos/feast/types"

	"github.com/moodyhq/placerec/core"
)

func TestEnrich(t *testing.T) {
	tests := []struct {
		name     string
		user     *core.User
		features map[string]any
		check    func(t *testing.T, u *core.User)
	}{
		{
			name: "fills empty fields",
			user: core.NewUser("u1"),
			features: map[string]any{
				"age":         int(27),
				"gender":      "female",
				"music_genre": "mpb",
				"profile":     "Exploradora noturna",
			},
			check: func(t *testing.T, u *core.User) {
				if u.Age != 27 || u.Gender != "female" || u.MusicGenre != "mpb" {
					t.Fatalf("fields not filled: %+v", u)
				}
				if u.Profile != "Exploradora noturna" {
					t.Fatalf("default profile must be replaced, got %q", u.Profile)
				}
			},
		},
		{
			name: "repository values win",
			user: &core.User{ID: "u2", Age: 40, Gender: "male", MusicGenre: "rock", Profile: "veterano"},
			features: map[string]any{
				"age":         int(27),
				"gender":      "female",
				"music_genre": "mpb",
				"profile":     "novato",
			},
			check: func(t *testing.T, u *core.User) {
				if u.Age != 40 || u.Gender != "male" || u.MusicGenre != "rock" || u.Profile != "veterano" {
					t.Fatalf("existing fields overwritten: %+v", u)
				}
			},
		},
		{
			name: "int64 age from feature store",
			user: core.NewUser("u3"),
			features: map[string]any{
				"age": int64(33),
			},
			check: func(t *testing.T, u *core.User) {
				if u.Age != 33 {
					t.Fatalf("expected age 33, got %d", u.Age)
				}
			},
		},
		{
			name:     "nil features",
			user:     core.NewUser("u4"),
			features: nil,
			check: func(t *testing.T, u *core.User) {
				if u.Age != 0 || u.Profile != core.DefaultProfile {
					t.Fatalf("nil features must be a no-op: %+v", u)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Enrich(tt.user, tt.features)
			tt.check(t, tt.user)
		})
	}
}

func TestShortName(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"user_profile:age", "age"},
		{"age", "age"},
		{"project:view:field", "field"},
	}
	for _, tt := range tests {
		if got := shortName(tt.ref); got != tt.want {
			t.Fatalf("shortName(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestFromValue(t *testing.T) {
	tests := []struct {
		name string
		in   *feasttypes.Value
		want any
	}{
		{"string", &feasttypes.Value{Val: &feasttypes.Value_StringVal{StringVal: "rock"}}, "rock"},
		{"int32", &feasttypes.Value{Val: &feasttypes.Value_Int32Val{Int32Val: 27}}, int(27)},
		{"int64", &feasttypes.Value{Val: &feasttypes.Value_Int64Val{Int64Val: 33}}, int(33)},
		{"double", &feasttypes.Value{Val: &feasttypes.Value_DoubleVal{DoubleVal: 1.5}}, 1.5},
		{"bool", &feasttypes.Value{Val: &feasttypes.Value_BoolVal{BoolVal: true}}, true},
		{"bytes", &feasttypes.Value{Val: &feasttypes.Value_BytesVal{BytesVal: []byte("x")}}, "x"},
		{"nil", nil, nil},
		{"unset", &feasttypes.Value{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fromValue(tt.in); got != tt.want {
				t.Fatalf("got %v (%T), want %v", got, got, tt.want)
			}
		})
	}
}
