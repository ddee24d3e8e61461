package epoll

import "testing"

func TestEffective(t *testing.T) {
	tests := []struct {
		name      string
		requested Mask
		want      Mask
	}{
		{"bare in", In, In | Err | Hup},
		{"keeps interest and options", In | Out | ET | OneShot, In | Out | ET | OneShot | Err | Hup},
		{"unknown bits dropped", Mask(1 << 16), Err | Hup},
		{"option bits preserved", In | ET | OneShot, In | ET | OneShot | Err | Hup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := effective(tt.requested); got != tt.want {
				t.Errorf("effective(%v) = %v, want %v", tt.requested, got, tt.want)
			}
		})
	}
}

func TestMaskPredicates(t *testing.T) {
	m := In | ET | OneShot
	if !m.edgeTriggered() {
		t.Error("expected edgeTriggered")
	}
	if !m.oneShot() {
		t.Error("expected oneShot")
	}
	if m.exclusive() {
		t.Error("did not expect exclusive")
	}
}

func TestAtomicMask(t *testing.T) {
	var a atomicMask
	if a.load() != 0 {
		t.Fatal("expected zero initial value")
	}
	a.or(In)
	a.or(Out)
	if got := a.load(); got != In|Out {
		t.Fatalf("got %v, want %v", got, In|Out)
	}
	if got := a.swap(0); got != In|Out {
		t.Fatalf("swap returned %v, want %v", got, In|Out)
	}
	if a.load() != 0 {
		t.Fatal("expected zero after swap(0)")
	}
}
