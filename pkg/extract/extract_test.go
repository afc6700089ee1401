package extract

import "testing"

func TestLoginURL(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{
			name:   "labeled URL with trailing text",
			text:   "Please login. URL: https://kite.zerodha.com/connect/login?x=1\nmore text",
			want:   "https://kite.zerodha.com/connect/login?x=1",
			wantOK: true,
		},
		{
			name:   "bare URL without marker",
			text:   "https://kite.zerodha.com/connect/login?v=3&api_key=abc",
			want:   "https://kite.zerodha.com/connect/login?v=3&api_key=abc",
			wantOK: true,
		},
		{
			name:   "labeled URL at end of text",
			text:   "To authenticate visit URL: https://kite.zerodha.com/connect/login?v=3",
			want:   "https://kite.zerodha.com/connect/login?v=3",
			wantOK: true,
		},
		{
			name:   "surrounding whitespace trimmed",
			text:   "URL: https://kite.zerodha.com/connect/login?v=3 \n",
			want:   "https://kite.zerodha.com/connect/login?v=3",
			wantOK: true,
		},
		{
			name:   "no login domain",
			text:   "no relevant content",
			wantOK: false,
		},
		{
			name:   "marker without domain",
			text:   "URL: https://example.com/other",
			wantOK: false,
		},
		{
			name:   "empty text",
			text:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LoginURL(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("LoginURL ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("LoginURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSessionID(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		want   string
		wantOK bool
	}{
		{
			name:   "session id between parameters",
			url:    "https://host/cb?status=success&session_id=abc123&foo=bar",
			want:   "abc123",
			wantOK: true,
		},
		{
			name:   "session id last parameter",
			url:    "https://host/cb?session_id=xyz789",
			want:   "xyz789",
			wantOK: true,
		},
		{
			name:   "missing parameter",
			url:    "https://host/cb?status=success",
			wantOK: false,
		},
		{
			name:   "empty value",
			url:    "https://host/cb?session_id=&foo=bar",
			want:   "",
			wantOK: true,
		},
		{
			name:   "empty string",
			url:    "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SessionID(tt.url)
			if ok != tt.wantOK {
				t.Fatalf("SessionID ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("SessionID = %q, want %q", got, tt.want)
			}
		})
	}
}
