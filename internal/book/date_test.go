package book

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestParseDate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		d, err := ParseDate("2022-01-01")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC), d.Time())
		assert.Equal(t, "2022-01-01", d.String())
	})

	t.Run("rejects timestamps", func(t *testing.T) {
		_, err := ParseDate("2022-01-01T10:00:00Z")
		assert.Error(t, err)
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := ParseDate("")
		assert.Error(t, err)
	})
}

func TestDateOf(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	// 2022-01-01 01:00 in Tokyo is still 2021-12-31 in UTC.
	d := DateOf(time.Date(2022, time.January, 1, 1, 0, 0, 0, tokyo))
	assert.Equal(t, "2022-01-01", d.String())
}

func TestDate_JSON(t *testing.T) {
	t.Run("marshal", func(t *testing.T) {
		b, err := json.Marshal(NewDate(2021, time.May, 10))
		require.NoError(t, err)
		assert.Equal(t, `"2021-05-10"`, string(b))
	})

	t.Run("zero marshals to null", func(t *testing.T) {
		b, err := json.Marshal(Date{})
		require.NoError(t, err)
		assert.Equal(t, "null", string(b))
	})

	t.Run("unmarshal", func(t *testing.T) {
		var d Date
		require.NoError(t, json.Unmarshal([]byte(`"2020-12-12"`), &d))
		assert.Equal(t, NewDate(2020, time.December, 12), d)
	})

	t.Run("unmarshal rejects numbers", func(t *testing.T) {
		var d Date
		assert.Error(t, json.Unmarshal([]byte(`20201212`), &d))
	})
}

func TestDate_BSONRoundTrip(t *testing.T) {
	type doc struct {
		PublishedDate Date `bson:"published_date"`
	}

	zones := []*time.Location{
		time.UTC,
		time.FixedZone("minus-eleven", -11*60*60),
		time.FixedZone("plus-fourteen", 14*60*60),
	}

	for _, loc := range zones {
		t.Run(loc.String(), func(t *testing.T) {
			prev := time.Local
			time.Local = loc
			t.Cleanup(func() { time.Local = prev })

			in := doc{PublishedDate: NewDate(2022, time.January, 1)}
			raw, err := bson.Marshal(in)
			require.NoError(t, err)

			var out doc
			require.NoError(t, bson.Unmarshal(raw, &out))
			assert.Equal(t, "2022-01-01", out.PublishedDate.String())
			assert.Equal(t, in, out)
		})
	}
}

func TestDate_BSONStoredAsDatetime(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"d": NewDate(2022, time.January, 15)})
	require.NoError(t, err)

	v := bson.Raw(raw).Lookup("d")
	assert.Equal(t, bson.TypeDateTime, v.Type)
	assert.Equal(t, time.Date(2022, time.January, 15, 0, 0, 0, 0, time.UTC).UnixMilli(), v.DateTime())
}

func TestDate_BSONFromString(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"published_date": "2021-11-11"})
	require.NoError(t, err)

	var out struct {
		PublishedDate Date `bson:"published_date"`
	}
	require.NoError(t, bson.Unmarshal(raw, &out))
	assert.Equal(t, NewDate(2021, time.November, 11), out.PublishedDate)
}
