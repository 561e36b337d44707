package server

import (
	"testing"
	"time"

	"connectrpc.com/connect"
)

func newTestSketchService(t *testing.T) *SketchService {
	return NewSketchService(newTestStore(t))
}

func TestSketch_SaveAndLoad(t *testing.T) {
	svc := newTestSketchService(t)

	resp, err := svc.Save(bg(), connectReq(t, map[string]interface{}{
		"name":   "tri",
		"source": triangle,
	}))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if got := field(t, resp, "name").GetStringValue(); got != "tri" {
		t.Errorf("name = %q, want tri", got)
	}
	if _, err := time.Parse(time.RFC3339Nano, field(t, resp, "modified").GetStringValue()); err != nil {
		t.Errorf("modified is not a timestamp: %v", err)
	}
	if _, ok := resp.Msg.GetFields()["source"]; ok {
		t.Error("Save should not echo the source")
	}

	resp, err = svc.Load(bg(), connectReq(t, map[string]interface{}{"name": "tri"}))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := field(t, resp, "source").GetStringValue(); got != triangle {
		t.Errorf("source = %q, want the saved program", got)
	}
}

func TestSketch_List(t *testing.T) {
	svc := newTestSketchService(t)

	for _, name := range []string{"a", "b"} {
		if _, err := svc.Save(bg(), connectReq(t, map[string]interface{}{"name": name, "source": "stay"})); err != nil {
			t.Fatal(err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	resp, err := svc.List(bg(), connectReq(t, map[string]interface{}{}))
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	sketches := list(t, resp, "sketches")
	if len(sketches) != 2 {
		t.Fatalf("len(sketches) = %d, want 2", len(sketches))
	}
	if got := sketches[0].GetStructValue().GetFields()["name"].GetStringValue(); got != "b" {
		t.Errorf("sketches[0] = %q, want the most recent, b", got)
	}
}

func TestSketch_ListEmpty(t *testing.T) {
	svc := newTestSketchService(t)

	resp, err := svc.List(bg(), connectReq(t, map[string]interface{}{}))
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if got := len(list(t, resp, "sketches")); got != 0 {
		t.Errorf("len(sketches) = %d, want 0", got)
	}
}

func TestSketch_Delete(t *testing.T) {
	svc := newTestSketchService(t)

	if _, err := svc.Save(bg(), connectReq(t, map[string]interface{}{"name": "gone", "source": "stay"})); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Delete(bg(), connectReq(t, map[string]interface{}{"name": "gone"})); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	_, err := svc.Load(bg(), connectReq(t, map[string]interface{}{"name": "gone"}))
	wantCode(t, err, connect.CodeNotFound)

	_, err = svc.Delete(bg(), connectReq(t, map[string]interface{}{"name": "gone"}))
	wantCode(t, err, connect.CodeNotFound)
}

func TestSketch_InvalidRequests(t *testing.T) {
	svc := newTestSketchService(t)

	_, err := svc.Save(bg(), connectReq(t, map[string]interface{}{"source": "stay"}))
	wantCode(t, err, connect.CodeInvalidArgument)

	_, err = svc.Save(bg(), connectReq(t, map[string]interface{}{"name": "   ", "source": "stay"}))
	wantCode(t, err, connect.CodeInvalidArgument)

	_, err = svc.Save(bg(), connectReq(t, map[string]interface{}{"name": "x", "source": 4}))
	wantCode(t, err, connect.CodeInvalidArgument)

	_, err = svc.Load(bg(), connectReq(t, map[string]interface{}{}))
	wantCode(t, err, connect.CodeInvalidArgument)
}
