package warden

import (
	"errors"
	"strings"
	"testing"

	"warden.ai/internal/protocol"
	"warden.ai/internal/sim/session"
)

func TestRecorder_RecordsDrop(t *testing.T) {
	l := newMapLedger()
	sink := &fakeSink{}
	r := NewRecorder(l, sink, nil)
	sess := session.New(0, "10.0.0.1", 4)

	payload := protocol.EncodeDropPayload(protocol.DropPayload{ItemID: 50, Stack: 10})
	r.HandleItemDrop(sess, payload)

	n, err := l.CountMatching(50, 10)
	if err != nil || n < 1 {
		t.Fatalf("CountMatching=(%d,%v), want >=1", n, err)
	}

	infos := sink.byKind("info")
	if len(infos) != 1 {
		t.Fatalf("info messages=%d, want 1", len(infos))
	}
	if !strings.HasPrefix(infos[0].Text, "Item tracked with ID: ") {
		t.Fatalf("info text=%q", infos[0].Text)
	}
	uid := strings.TrimPrefix(infos[0].Text, "Item tracked with ID: ")
	if len(uid) != 36 {
		t.Fatalf("uid %q does not look like a uuid", uid)
	}
}

func TestRecorder_FreshUIDPerDrop(t *testing.T) {
	l := newMapLedger()
	sink := &fakeSink{}
	r := NewRecorder(l, sink, nil)
	sess := session.New(0, "10.0.0.1", 4)

	payload := protocol.EncodeDropPayload(protocol.DropPayload{ItemID: 7, Stack: 1})
	r.HandleItemDrop(sess, payload)
	r.HandleItemDrop(sess, payload)

	infos := sink.byKind("info")
	if len(infos) != 2 || infos[0].Text == infos[1].Text {
		t.Fatalf("uids not unique: %+v", infos)
	}
}

func TestRecorder_MalformedPayloadDropped(t *testing.T) {
	l := newMapLedger()
	sink := &fakeSink{}
	r := NewRecorder(l, sink, nil)
	sess := session.New(0, "10.0.0.1", 4)

	r.HandleItemDrop(sess, nil)
	r.HandleItemDrop(sess, []byte{1, 2, 3})

	if len(l.rows) != 0 {
		t.Fatalf("ledger rows=%d after malformed payloads", len(l.rows))
	}
	if len(sink.msgs) != 0 {
		t.Fatalf("messages sent for malformed payloads: %+v", sink.msgs)
	}
}

func TestRecorder_StoreFailureBestEffort(t *testing.T) {
	l := newMapLedger()
	l.err = errors.New("db locked")
	sink := &fakeSink{}
	r := NewRecorder(l, sink, nil)
	sess := session.New(0, "10.0.0.1", 4)

	r.HandleItemDrop(sess, protocol.EncodeDropPayload(protocol.DropPayload{ItemID: 50, Stack: 10}))

	if len(sink.msgs) != 0 {
		t.Fatalf("info sent despite failed record: %+v", sink.msgs)
	}
}

func TestRecorder_NilSessionTolerated(t *testing.T) {
	l := newMapLedger()
	r := NewRecorder(l, &fakeSink{}, nil)
	r.HandleItemDrop(nil, protocol.EncodeDropPayload(protocol.DropPayload{ItemID: 50, Stack: 10}))
	if n, _ := l.CountMatching(50, 10); n < 1 {
		t.Fatalf("drop from detached session not recorded")
	}
}
