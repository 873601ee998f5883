package cursor_test

import (
	"io"
	"testing"

	"github.com/Alia5/ps2cursor/cursor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestButtonFromStatus(t *testing.T) {
	tests := []struct {
		name   string
		status byte
		want   cursor.Button
	}{
		{name: "no bits", status: 0x00, want: cursor.None},
		{name: "left only", status: 0x01, want: cursor.Left},
		{name: "right only", status: 0x02, want: cursor.Right},
		{name: "middle only", status: 0x04, want: cursor.Middle},
		{name: "left and right", status: 0x03, want: cursor.Left},
		{name: "right and middle", status: 0x06, want: cursor.Right},
		{name: "left and middle", status: 0x05, want: cursor.Left},
		{name: "all three", status: 0x07, want: cursor.Left},
		{name: "sync bit ignored", status: 0x08, want: cursor.None},
		{name: "sign bits ignored", status: 0x38 | 0x04, want: cursor.Middle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cursor.ButtonFromStatus(tt.status))
		})
	}
}

func TestButtonFromStatusNeverYieldsExtraButtons(t *testing.T) {
	for s := 0; s < 256; s++ {
		b := cursor.ButtonFromStatus(byte(s))
		assert.NotEqual(t, cursor.FourthButton, b)
		assert.NotEqual(t, cursor.FifthButton, b)
	}
}

func TestButtonString(t *testing.T) {
	assert.Equal(t, "left", cursor.Left.String())
	assert.Equal(t, "fifth", cursor.FifthButton.String())
	assert.Equal(t, "unknown", cursor.Button(0x03).String())
}

func TestDecodeMotion(t *testing.T) {
	tests := []struct {
		in   byte
		want int
	}{
		{0, 0},
		{1, 1},
		{127, 127},
		{128, -128},
		{250, -6},
		{251, -5},
		{255, -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cursor.DecodeMotion(tt.in), "byte %d", tt.in)
	}
}

func TestDecodeMotionMatchesTwosComplement(t *testing.T) {
	for v := 0; v < 256; v++ {
		assert.Equal(t, int(int8(byte(v))), cursor.DecodeMotion(byte(v)))
	}
}

func TestReportUnmarshalBinary(t *testing.T) {
	var r cursor.Report
	require.NoError(t, r.UnmarshalBinary([]byte{0x01, 0x05, 0xFB}))

	assert.Equal(t, cursor.Left, r.Button())
	dx, dy := r.Motion()
	assert.Equal(t, 5, dx)
	assert.Equal(t, -5, dy)
}

func TestReportUnmarshalBinaryShort(t *testing.T) {
	var r cursor.Report
	err := r.UnmarshalBinary([]byte{0x01, 0x05})
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReportMarshalBinary(t *testing.T) {
	r := cursor.Report{Status: cursor.BitRight, DX: -6, DY: 127}
	b, err := r.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 250, 127}, b)
}
