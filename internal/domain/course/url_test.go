package course

import (
	"net/url"
	"testing"
)

func TestNormalizeURL_Passthrough(t *testing.T) {
	tests := []string{
		"https://www.coursera.org/learn/machine-learning",
		"https://www.edx.org/course/cs50",
		"http://udacity.com/course/intro-to-ai--cs271",
		"https://www.linkedin.com/learning/python-essential-training",
	}
	for _, in := range tests {
		got := NormalizeURL(in)
		if got.URL != in || got.Source != SourcePassthrough {
			t.Errorf("NormalizeURL(%q) = %+v, want passthrough", in, got)
		}
	}
}

func TestNormalizeURL_ProviderSearch(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"provider named in text",
			"Machine Learning on Coursera",
			"https://www.coursera.org/search?query=machine%2Blearning%2Bon%2Bcoursera",
		},
		{
			"edx",
			"edX: CS50's Introduction",
			"https://www.edx.org/search?q=edx%2Bcs50s%2Bintroduction",
		},
		{
			"udacity",
			"Udacity Self-Driving Car",
			"https://www.udacity.com/course/search?search=udacity%2Bself-driving%2Bcar",
		},
		{
			"linkedin learning strips provider name",
			"LinkedIn Learning - Excel Essentials",
			"https://www.linkedin.com/learning/search?keywords=-%2Bexcel%2Bessentials",
		},
		{
			"no provider defaults to coursera",
			"Data Analysis with Python",
			"https://www.coursera.org/search?query=data%2Banalysis%2Bwith%2Bpython",
		},
		{
			"url on unknown host",
			"https://www.udemy.com/course/go",
			"https://www.coursera.org/search?query=httpswwwudemycomcoursego",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeURL(tc.in)
			if got.Source != SourceProviderSearch {
				t.Fatalf("source = %q, want %q", got.Source, SourceProviderSearch)
			}
			if got.URL != tc.want {
				t.Errorf("url = %q, want %q", got.URL, tc.want)
			}
		})
	}
}

func TestNormalizeURL_Fallback(t *testing.T) {
	for _, in := range []string{"", "   ", "!!!@@@###", "—", "  ---  "} {
		got := NormalizeURL(in)
		if got.URL != FallbackURL || got.Source != SourceFallback {
			t.Errorf("NormalizeURL(%q) = %+v, want fallback", in, got)
		}
	}
}

func TestNormalizeURL_AlwaysAbsolute(t *testing.T) {
	inputs := []string{
		"", "garbage", "javascript:alert(1)", "ftp://coursera.org/x",
		"//www.coursera.org/learn", "www.coursera.org/learn/go", "edx", "%zz",
	}
	for _, in := range inputs {
		got := NormalizeURL(in)
		u, err := url.Parse(got.URL)
		if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
			t.Errorf("NormalizeURL(%q) = %q is not an absolute URL", in, got.URL)
		}
	}
}

func TestAllowedHost(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"www.coursera.org", true},
		{"coursera.org", true},
		{"COURSERA.ORG", true},
		{"notcoursera.org", false},
		{"coursera.org.evil.com", false},
		{"www.udemy.com", false},
	}
	for _, tc := range tests {
		if got := allowedHost(tc.host); got != tc.want {
			t.Errorf("allowedHost(%q) = %v, want %v", tc.host, got, tc.want)
		}
	}
}
