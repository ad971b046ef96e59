package carrier

import (
	"encoding/json"
	"testing"
)

func TestDecodeInboundFrames(t *testing.T) {
	var start Frame
	startJSON := `{"event":"start","start":{"streamSid":"MZ1","callSid":"CA1","accountSid":"AC1"}}`
	if err := json.Unmarshal([]byte(startJSON), &start); err != nil {
		t.Fatalf("decode start: %v", err)
	}
	if start.Event != EventStart || start.Start == nil || start.Start.CallSid != "CA1" {
		t.Errorf("start frame: %+v", start)
	}

	var media Frame
	mediaJSON := `{"event":"media","media":{"payload":"//8A"}}`
	if err := json.Unmarshal([]byte(mediaJSON), &media); err != nil {
		t.Fatalf("decode media: %v", err)
	}
	if media.Media == nil || media.Media.Payload != "//8A" {
		t.Errorf("media frame: %+v", media)
	}
}

func TestOutboundFrameShape(t *testing.T) {
	data, err := json.Marshal(MediaFrame("MZ1", "AAAA"))
	if err != nil {
		t.Fatal(err)
	}
	want := `{"event":"media","streamSid":"MZ1","media":{"payload":"AAAA"}}`
	if string(data) != want {
		t.Errorf("media frame json:\nwant %s\ngot  %s", want, data)
	}

	data, _ = json.Marshal(MarkFrame("MZ1", MarkFinish))
	if string(data) != `{"event":"mark","streamSid":"MZ1","mark":{"name":"finish"}}` {
		t.Errorf("mark frame json: %s", data)
	}

	data, _ = json.Marshal(ClearFrame("MZ1"))
	if string(data) != `{"event":"clear","streamSid":"MZ1"}` {
		t.Errorf("clear frame json: %s", data)
	}
}
