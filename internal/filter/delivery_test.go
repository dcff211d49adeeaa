package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBucketOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		label  string
		want   Bucket
		wantOK bool
	}{
		{label: "Mismo día", want: BucketSameDay, wantOK: true},
		{label: "same day", want: BucketSameDay, wantOK: true},
		{label: "0h", want: BucketSameDay, wantOK: true},
		{label: "24 horas", want: Bucket24h, wantOK: true},
		{label: "12 hrs", want: Bucket24h, wantOK: true},
		{label: "1 día", want: Bucket24h, wantOK: true},
		{label: "48 hrs", want: Bucket48h, wantOK: true},
		{label: "2 days", want: Bucket48h, wantOK: true},
		{label: "24-48 horas", want: Bucket48h, wantOK: true},
		{label: "72h+", want: Bucket72hPlus, wantOK: true},
		{label: "3-5 días", want: Bucket72hPlus, wantOK: true},
		{label: "36", want: Bucket48h, wantOK: true},
		{label: "", wantOK: false},
		{label: "consultar", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			t.Parallel()

			got, ok := BucketOf(tt.label)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBucket(t *testing.T) {
	t.Parallel()

	b, ok := ParseBucket(" 72H+ ")
	assert.True(t, ok)
	assert.Equal(t, Bucket72hPlus, b)

	_, ok = ParseBucket("48 horas")
	assert.False(t, ok)
}
