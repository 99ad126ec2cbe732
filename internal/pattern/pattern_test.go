package pattern

import "testing"

func TestCompileAndFind(t *testing.T) {
	p, err := Compile(`foo\d+`, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	span, ok := p.Find([]byte("see foo123 end"), 0)
	if !ok {
		t.Fatal("expected a match")
	}
	if span.Start != 4 || span.End != 10 {
		t.Fatalf("Find span = %+v, want {4 10 ...}", span)
	}
}

func TestIgnoreCase(t *testing.T) {
	p, err := Compile("hello", Options{IgnoreCase: true})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !p.IsMatch([]byte("HELLO world")) {
		t.Fatal("expected case-insensitive match")
	}
}

func TestFixedString(t *testing.T) {
	p, err := Compile("a.b*c", Options{FixedString: true})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if p.IsMatch([]byte("axbyyc")) {
		t.Fatal("fixed string pattern should not treat . and * as metacharacters")
	}
	if !p.IsMatch([]byte("xa.b*cx")) {
		t.Fatal("expected literal substring match")
	}
}

func TestWordRegexp(t *testing.T) {
	p, err := Compile("cat", Options{WordRegexp: true})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if p.IsMatch([]byte("concatenate")) {
		t.Fatal("word-boundary pattern matched inside a larger word")
	}
	if !p.IsMatch([]byte("the cat sat")) {
		t.Fatal("expected word-boundary match")
	}
}

func TestLineRegexp(t *testing.T) {
	p, err := Compile("cat", Options{LineRegexp: true})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if p.IsMatch([]byte("the cat sat")) {
		t.Fatal("line-anchored pattern matched a substring of a longer line")
	}
	if !p.IsMatch([]byte("cat")) {
		t.Fatal("expected exact line match")
	}
}

func TestFindAllNonOverlapping(t *testing.T) {
	p, err := Compile(`\d+`, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	spans := p.FindAll([]byte("a1 b22 c333"))
	if len(spans) != 3 {
		t.Fatalf("FindAll returned %d spans, want 3", len(spans))
	}
}

func TestCapturesGroups(t *testing.T) {
	p, err := Compile(`(\w+)@(\w+)`, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if p.NumCaptures() != 2 {
		t.Fatalf("NumCaptures() = %d, want 2", p.NumCaptures())
	}
	span, ok := p.Find([]byte("user@example"), 0)
	if !ok {
		t.Fatal("expected a match")
	}
	if len(span.Groups) != 3 {
		t.Fatalf("Groups length = %d, want 3", len(span.Groups))
	}
}
