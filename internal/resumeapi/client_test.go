package resumeapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api/", 5*time.Second)
}

func TestNewClientDefaultsBaseURL(t *testing.T) {
	if got := NewClient("  ", 0).BaseURL(); got != DefaultBaseURL {
		t.Fatalf("expected default base url, got %q", got)
	}
}

func TestCreateResumeSendsMultipartWithPhoto(t *testing.T) {
	var gotFields map[string]string
	var gotPhoto []byte
	var gotPhotoType string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/resumes/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary=") {
			t.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotFields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			gotFields[k] = v[0]
		}
		file, header, err := r.FormFile("photo")
		if err != nil {
			t.Errorf("photo part: %v", err)
		} else {
			gotPhoto, _ = io.ReadAll(file)
			gotPhotoType = header.Header.Get("Content-Type")
			file.Close()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":42,"name":"Jane Doe","photo_url":"/media/photos/jane.png","created_at":"2026-01-02T03:04:05Z","updated_at":"2026-01-02T03:04:05Z","owner":"x"}`)
	})

	created, err := client.CreateResume(context.Background(), Payload{
		Name:       "Jane Doe",
		Skills:     "Go, SQL",
		Experience: "Acme",
		Projects:   "",
		Bio:        "Builder",
		Photo:      &Photo{FileName: "jane.png", ContentType: "image/png", Data: []byte("png-bytes")},
	})
	if err != nil {
		t.Fatalf("CreateResume: %v", err)
	}

	wantFields := map[string]string{
		"name":       "Jane Doe",
		"skills":     "Go, SQL",
		"experience": "Acme",
		"projects":   "",
		"bio":        "Builder",
	}
	if diff := cmp.Diff(wantFields, gotFields); diff != "" {
		t.Fatalf("unexpected form fields (-want +got):\n%s", diff)
	}
	if string(gotPhoto) != "png-bytes" || gotPhotoType != "image/png" {
		t.Fatalf("unexpected photo part %q (%s)", gotPhoto, gotPhotoType)
	}
	if created.ID != "42" || created.PhotoURL != "/media/photos/jane.png" {
		t.Fatalf("unexpected created resume %+v", created)
	}
	if created.Extra["owner"] != "x" {
		t.Fatalf("expected unknown field kept in Extra, got %v", created.Extra)
	}
}

func TestCreateResumeOmitsPhotoPartWhenAbsent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if len(r.MultipartForm.File) != 0 {
			t.Errorf("expected no file parts, got %v", r.MultipartForm.File)
		}
		io.WriteString(w, `{"id":"abc"}`)
	})

	created, err := client.CreateResume(context.Background(), Payload{Name: "Untitled Resume", Bio: "Professional summary"})
	if err != nil {
		t.Fatalf("CreateResume: %v", err)
	}
	if created.ID != "abc" {
		t.Fatalf("expected string id kept, got %q", created.ID)
	}
}

func TestRateResumeSendsJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/resumes/7/rate_resume/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected json content type, got %q", r.Header.Get("Content-Type"))
		}
		var body map[string]int
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["rating"] != 4 {
			t.Errorf("unexpected body %v (%v)", body, err)
		}
		io.WriteString(w, `{"status":"rated","rating":4}`)
	})

	out, err := client.RateResume(context.Background(), "7", 4)
	if err != nil {
		t.Fatalf("RateResume: %v", err)
	}
	if out["status"] != "rated" {
		t.Fatalf("unexpected response %v", out)
	}
}

func TestDeleteResumeAcceptsEmptyBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/api/resumes/9/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := client.DeleteResume(context.Background(), "9"); err != nil {
		t.Fatalf("DeleteResume: %v", err)
	}
}

func TestNon2xxBecomesStatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	})

	_, err := client.GetResume(context.Background(), "1")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Error() != "HTTP error! status: 404" {
		t.Fatalf("unexpected message %q", statusErr.Error())
	}
	if !IsNotFound(err) {
		t.Fatalf("expected IsNotFound")
	}
}

func TestListEndpoints(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/resumes/":
			io.WriteString(w, `[{"id":1,"name":"A","rating":3.5},{"id":2,"name":"B"}]`)
		case "/api/resumes/templates/":
			io.WriteString(w, `[{"id":"modern","name":"Modern"}]`)
		default:
			http.NotFound(w, r)
		}
	})

	resumes, err := client.ListResumes(context.Background())
	if err != nil {
		t.Fatalf("ListResumes: %v", err)
	}
	if len(resumes) != 2 || resumes[0].Rating != 3.5 || resumes[1].ID != "2" {
		t.Fatalf("unexpected resumes %+v", resumes)
	}

	tpls, err := client.ListTemplates(context.Background())
	if err != nil {
		t.Fatalf("ListTemplates: %v", err)
	}
	if len(tpls) != 1 || tpls[0]["name"] != "Modern" {
		t.Fatalf("unexpected templates %v", tpls)
	}
}

func TestIDMarshalRoundTrip(t *testing.T) {
	raw, err := json.Marshal(struct {
		A ID `json:"a"`
		B ID `json:"b"`
	}{A: "12", B: "x-1"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"a":12,"b":"x-1"}` {
		t.Fatalf("unexpected json %s", raw)
	}
}

func TestIDMarshalQuotesNonCanonicalNumbers(t *testing.T) {
	for _, id := range []ID{"007", "+5", "-0"} {
		raw, err := json.Marshal(Resume{ID: id})
		if err != nil {
			t.Fatalf("marshal %q: %v", id, err)
		}
		var back Resume
		if err := json.Unmarshal(raw, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if back.ID != id {
			t.Fatalf("expected %q after round trip, got %q", id, back.ID)
		}
	}
	raw, err := json.Marshal(ID("-4"))
	if err != nil || string(raw) != "-4" {
		t.Fatalf("expected bare -4, got %s (%v)", raw, err)
	}
}
