package airquality

import (
	"errors"
	"testing"
	"time"
)

func TestFrequencyBucket(t *testing.T) {
	cases := []struct {
		name string
		freq Frequency
		at   string
		want string
	}{
		{"hour start", Hourly, "2013-03-01 05:30", "2013-03-01 05:00"},
		{"day start", Daily, "2013-03-01 23:59", "2013-03-01 00:00"},
		{"friday closes on sunday", Weekly, "2013-03-01 05:00", "2013-03-03 00:00"},
		{"sunday is its own week end", Weekly, "2013-03-03 15:00", "2013-03-03 00:00"},
		{"monday rolls forward", Weekly, "2013-03-04 00:00", "2013-03-10 00:00"},
		{"month end", Monthly, "2013-02-10 12:00", "2013-02-28 00:00"},
		{"leap month end", Monthly, "2016-02-10 12:00", "2016-02-29 00:00"},
		{"december", Monthly, "2013-12-05 00:00", "2013-12-31 00:00"},
		{"year end", Yearly, "2013-03-01 05:00", "2013-12-31 00:00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.freq.Bucket(ts(tc.at))
			if !got.Equal(ts(tc.want)) {
				t.Fatalf("expected %s, got %s", tc.want, got.Format(time.DateTime))
			}
		})
	}
}

func TestParseFrequency(t *testing.T) {
	f, err := ParseFrequency("Weekly")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f != Weekly {
		t.Fatalf("expected weekly, got %s", f)
	}
	if _, err := ParseFrequency("fortnightly"); !errors.Is(err, ErrUnknownFrequency) {
		t.Fatalf("expected ErrUnknownFrequency, got %v", err)
	}
}

func TestFrequencyBucketIgnoresCase(t *testing.T) {
	at := ts("2013-03-01 05:30")
	if got := Frequency("DAILY").Bucket(at); !got.Equal(ts("2013-03-01 00:00")) {
		t.Fatalf("expected day start, got %s", got.Format(time.DateTime))
	}
	if got := Frequency("fortnightly").Bucket(at); !got.Equal(at) {
		t.Fatalf("expected unknown frequency to leave the time unchanged, got %s", got.Format(time.DateTime))
	}
}
