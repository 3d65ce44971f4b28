//go:build !skip_codec_shamaton_msgpack

package codec

import "testing"

func TestShamatonMsgpackCodec_RoundTrip(t *testing.T) {
	c := NewShamatonMsgpackCodec()

	type sample struct {
		Name  string `msgpack:"name"`
		Count int    `msgpack:"count"`
	}

	in := sample{Name: "probe", Count: 7}
	b, err := c.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out sample
	if err := c.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: got %+v, want %+v", out, in)
	}
}
