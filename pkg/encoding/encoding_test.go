package encoding

import "testing"

func TestBaseName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"textures/foo.png", "foo.png"},
		{"textures\\foo.png", "foo.png"},
		{"C:\\art\\models/mixed\\bar.dds", "bar.dds"},
		{"foo.png", "foo.png"},
		{"", ""},
		{"dir/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := BaseName(tt.in); got != tt.want {
				t.Errorf("BaseName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStem(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"rock.png", "rock"},
		{"rock.diffuse.png", "rock"},
		{"rock", "rock"},
		{"", ""},
		{".hidden", ""},
	}

	for _, tt := range tests {
		if got := Stem(tt.in); got != tt.want {
			t.Errorf("Stem(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTrimExt(t *testing.T) {
	if got := TrimExt("house.model.dae"); got != "house.model" {
		t.Errorf("TrimExt = %q, want %q", got, "house.model")
	}
	if got := TrimExt("noext"); got != "noext" {
		t.Errorf("TrimExt = %q, want %q", got, "noext")
	}
}

func TestLatin1ToUTF8(t *testing.T) {
	// "café" in ISO-8859-1
	data := []byte{'c', 'a', 'f', 0xE9}
	if got := Latin1ToUTF8(data); got != "café" {
		t.Errorf("Latin1ToUTF8 = %q, want %q", got, "café")
	}

	back := UTF8ToLatin1("café")
	if string(back) != string(data) {
		t.Errorf("UTF8ToLatin1 = %v, want %v", back, data)
	}
}
