package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFormatPrice(t *testing.T) {
	cases := map[string]string{
		"0":          "0.00",
		"5.5":        "5.50",
		"999.999":    "1,000.00",
		"21500.25":   "21,500.25",
		"1234567.8":  "1,234,567.80",
		"-6100":      "-6,100.00",
		"-0.5":       "-0.50",
		"100000":     "100,000.00",
		"12345678.9": "12,345,678.90",
	}
	for in, want := range cases {
		got := FormatPrice(decimal.RequireFromString(in))
		if got != want {
			t.Errorf("FormatPrice(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatSignedAndPercent(t *testing.T) {
	if got := FormatSigned(decimal.NewFromInt(45)); got != "+45.00" {
		t.Errorf("FormatSigned(45) = %q", got)
	}
	if got := FormatSigned(decimal.NewFromInt(-12)); got != "-12.00" {
		t.Errorf("FormatSigned(-12) = %q", got)
	}
	if got := FormatSigned(decimal.Zero); got != "+0.00" {
		t.Errorf("FormatSigned(0) = %q", got)
	}
	if got := FormatPercent(decimal.RequireFromString("0.456")); got != "+0.46%" {
		t.Errorf("FormatPercent = %q", got)
	}
	if got := FormatRatio(decimal.NewFromInt(3)); got != "1:3.0" {
		t.Errorf("FormatRatio = %q", got)
	}
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("08:30")
	if err != nil || h != 8 || m != 30 {
		t.Fatalf("ParseClock(08:30) = %d, %d, %v", h, m, err)
	}
	for _, bad := range []string{"", "8", "24:00", "12:60", "ab:cd", "1:2:3"} {
		if _, _, err := ParseClock(bad); err == nil {
			t.Errorf("ParseClock(%q) expected error", bad)
		}
	}
}

func TestParseWeekday(t *testing.T) {
	if d, ok := ParseWeekday("Monday"); !ok || d != time.Monday {
		t.Errorf("ParseWeekday(Monday) = %v, %v", d, ok)
	}
	if d, ok := ParseWeekday("sat"); !ok || d != time.Saturday {
		t.Errorf("ParseWeekday(sat) = %v, %v", d, ok)
	}
	if _, ok := ParseWeekday("mo"); ok {
		t.Error("ParseWeekday(mo) should fail")
	}
}

func TestLoadLocationFollowsDaylightSaving(t *testing.T) {
	loc, err := LoadLocation("")
	if err != nil {
		t.Fatal(err)
	}
	if _, off := time.Date(2026, 1, 21, 12, 0, 0, 0, loc).Zone(); off != -6*60*60 {
		t.Errorf("January offset = %d, want CST", off)
	}
	if _, off := time.Date(2026, 7, 15, 12, 0, 0, 0, loc).Zone(); off != -5*60*60 {
		t.Errorf("July offset = %d, want CDT", off)
	}

	if _, err := LoadLocation("America/Nowhere"); err == nil {
		t.Error("LoadLocation(America/Nowhere) should fail")
	}
}

func TestCivilDateUsesLocalDay(t *testing.T) {
	loc, err := LoadLocation(DefaultTimezone)
	if err != nil {
		t.Fatal(err)
	}
	// 2026-01-21 03:00 UTC is still 2026-01-20 in Chicago.
	utc := time.Date(2026, 1, 21, 3, 0, 0, 0, time.UTC)
	got := CivilDate(utc.In(loc))
	want := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("CivilDate = %v, want %v", got, want)
	}
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	calls := 0
	permanent := errors.New("permanent")
	cfg := RetryConfig{
		MaxAttempts:  5,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Millisecond,
		Retryable:    func(err error) bool { return !errors.Is(err, permanent) },
	}
	err := Retry(context.Background(), cfg, func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) || calls != 1 {
		t.Errorf("calls = %d, err = %v", calls, err)
	}
}

func TestRetryEventuallySucceeds(t *testing.T) {
	calls := 0
	cfg := RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1}
	got, err := RetryWithResult(context.Background(), cfg, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("flaky")
		}
		return 42, nil
	})
	if err != nil || got != 42 || calls != 3 {
		t.Errorf("got %d, err %v, calls %d", got, err, calls)
	}
}
