package registry

import "testing"

func TestMapSides(t *testing.T) {
	tests := []struct {
		name       string
		clientSide string
		serverSide string
		want       Side
	}{
		{
			name:       "both required",
			clientSide: "required",
			serverSide: "required",
			want:       SideBoth,
		},
		{
			name:       "client required server optional",
			clientSide: "required",
			serverSide: "optional",
			want:       SideClient,
		},
		{
			name:       "client required server unsupported",
			clientSide: "required",
			serverSide: "unsupported",
			want:       SideClient,
		},
		{
			name:       "server required client optional",
			clientSide: "optional",
			serverSide: "required",
			want:       SideServer,
		},
		{
			name:       "both optional",
			clientSide: "optional",
			serverSide: "optional",
			want:       SideOptional,
		},
		{
			name:       "both unknown falls through to raw pair",
			clientSide: "unknown",
			serverSide: "unknown",
			want:       Side("Client: unknown, Server: unknown"),
		},
		{
			name:       "optional client unsupported server",
			clientSide: "optional",
			serverSide: "unsupported",
			want:       Side("Client: optional, Server: unsupported"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapSides(tt.clientSide, tt.serverSide)
			if got != tt.want {
				t.Errorf("MapSides(%q, %q) = %q, want %q", tt.clientSide, tt.serverSide, got, tt.want)
			}
		})
	}
}

func TestSideIsNamed(t *testing.T) {
	named := []Side{SideClient, SideServer, SideBoth, SideOptional, SideUnknown}
	for _, side := range named {
		if !side.IsNamed() {
			t.Errorf("expected %q to be a named side", side)
		}
	}

	raw := RawSide("unsupported", "optional")
	if raw.IsNamed() {
		t.Errorf("expected raw pair %q to not be a named side", raw)
	}
}
