package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_CloneIsDeep(t *testing.T) {
	original := Record{
		"id":        "h1",
		"amenities": []interface{}{"wifi", "pool"},
		"location":  map[string]interface{}{"city": "Goa"},
		"tags":      []string{"beach"},
	}
	clone := original.Clone()

	clone["amenities"].([]interface{})[0] = "spa"
	clone["location"].(map[string]interface{})["city"] = "Pune"
	clone["tags"].([]string)[0] = "city"

	assert.Equal(t, "wifi", original["amenities"].([]interface{})[0])
	assert.Equal(t, "Goa", original["location"].(map[string]interface{})["city"])
	assert.Equal(t, "beach", original["tags"].([]string)[0])
	assert.Nil(t, Record(nil).Clone())
}

func TestRecord_MergeKeepsID(t *testing.T) {
	base := Record{"id": "h1", "name": "Sea View", "price": 100.0}
	merged := base.Merge(Record{"id": "other", "price": 80.0, "available": true})

	assert.Equal(t, "h1", merged.ID())
	assert.Equal(t, 80.0, merged["price"])
	assert.Equal(t, true, merged["available"])
	assert.Equal(t, 100.0, base["price"], "merge must not modify the receiver")
}

func TestRecord_Lookup(t *testing.T) {
	r := Record{
		"name":     "Sea View",
		"a.b":      "literal",
		"location": map[string]interface{}{"city": "Goa", "geo": map[string]interface{}{"lat": 15.3}},
	}

	tests := []struct {
		field string
		want  interface{}
		found bool
	}{
		{"name", "Sea View", true},
		{"a.b", "literal", true},
		{"location.city", "Goa", true},
		{"location.geo.lat", 15.3, true},
		{"location.zip", nil, false},
		{"name.first", nil, false},
		{"missing", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, ok := r.Lookup(tt.field)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecord_NumberAndString(t *testing.T) {
	r := Record{"price": 2400, "rating": 4.5, "available": true, "city": "Goa", "none": nil}

	n, ok := r.Number("price")
	require.True(t, ok)
	assert.Equal(t, 2400.0, n)

	_, ok = r.Number("city")
	assert.False(t, ok)

	assert.Equal(t, "4.5", r.String("rating"))
	assert.Equal(t, "true", r.String("available"))
	assert.Equal(t, "Goa", r.String("city"))
	assert.Equal(t, "", r.String("none"))
	assert.Equal(t, "", r.String("missing"))
}

func TestCanonicalize(t *testing.T) {
	out, err := Canonicalize(Record{
		"rooms": 2,
		"tags":  []string{"beach"},
		"guest": struct {
			Name string `json:"name"`
		}{"Asha"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2.0, out["rooms"])
	assert.Equal(t, []interface{}{"beach"}, out["tags"])
	assert.Equal(t, map[string]interface{}{"name": "Asha"}, out["guest"])

	empty, err := Canonicalize(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStampNew(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	fresh := Record{}
	StampNew(fresh, now)
	assert.NotEmpty(t, fresh.ID())
	assert.Equal(t, "2026-01-02T03:04:05Z", fresh[FieldCreatedAt])

	existing := Record{"id": "h1", "created_at": "earlier"}
	StampNew(existing, now)
	assert.Equal(t, "h1", existing.ID())
	assert.Equal(t, "earlier", existing[FieldCreatedAt])
}

func TestStringSlice(t *testing.T) {
	got, ok := StringSlice([]interface{}{"wifi", 2.0, true})
	require.True(t, ok)
	assert.Equal(t, []string{"wifi", "2", "true"}, got)

	_, ok = StringSlice("wifi")
	assert.False(t, ok)
}

func TestValidationError(t *testing.T) {
	err := Invalid("email", "is required")
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "validation failed: email is required", err.Error())

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "email", verr.Field)

	assert.Equal(t, "validation failed: body is empty", Invalid("", "body is empty").Error())
}

func TestValidateCollectionName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"hotels", false},
		{"_private", false},
		{"trip_2026", false},
		{"", true},
		{"2026trips", true},
		{"hotels;drop", true},
		{"../etc", true},
		{"with space", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCollectionName(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCollection)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPageOptions(t *testing.T) {
	t.Run("normalize", func(t *testing.T) {
		assert.Equal(t, PageOptions{Page: 1, PageSize: DefaultPageSize}, PageOptions{}.Normalize())
		assert.Equal(t, PageOptions{Page: 3, PageSize: MaxPageSize}, PageOptions{Page: 3, PageSize: 500}.Normalize())
		assert.Equal(t, DefaultPageOptions(), PageOptions{Page: -2, PageSize: -1}.Normalize())
	})

	t.Run("bounds", func(t *testing.T) {
		tests := []struct {
			opts       PageOptions
			n          int
			start, end int
		}{
			{PageOptions{Page: 1, PageSize: 10}, 25, 0, 10},
			{PageOptions{Page: 3, PageSize: 10}, 25, 20, 25},
			{PageOptions{Page: 4, PageSize: 10}, 25, 25, 25},
			{PageOptions{}, 0, 0, 0},
		}
		for _, tt := range tests {
			start, end := tt.opts.Bounds(tt.n)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		}
	})

	t.Run("validate", func(t *testing.T) {
		assert.NoError(t, PageOptions{}.Validate())
		assert.ErrorIs(t, PageOptions{Page: -1}.Validate(), ErrValidation)
		assert.ErrorIs(t, PageOptions{PageSize: -1}.Validate(), ErrValidation)
		assert.ErrorIs(t, PageOptions{PageSize: MaxPageSize + 1}.Validate(), ErrValidation)
	})
}
