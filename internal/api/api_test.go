package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/starford/laguz/internal/store"
	"github.com/starford/laguz/internal/testutil"
)

// testEnv sets up a temp notebook, store, and router for testing.
// authToken="" means auth disabled; non-empty means token mode.
func testEnv(t *testing.T, authToken string) (*store.Store, http.Handler) {
	t.Helper()
	st, _ := testutil.TestStore(t)
	router := NewRouter(st, authToken != "", authToken, nil)
	return st, router
}

func doJSON(t *testing.T, router http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateAndGetNote(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/notes", map[string]string{"folder": "Work"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var created NoteDTO
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	if created.Folder != "Work" {
		t.Errorf("folder = %q", created.Folder)
	}

	w = doJSON(t, router, http.MethodGet, "/notes/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var got NoteDTO
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.ID != created.ID {
		t.Errorf("id = %q, want %q", got.ID, created.ID)
	}
}

func TestCreateNote_BlankFolderDefaults(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/notes", map[string]string{})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}
	var created NoteDTO
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	if created.Folder != "General" {
		t.Errorf("folder = %q, want General", created.Folder)
	}
}

func TestUpdateNote(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/notes", map[string]string{})
	var created NoteDTO
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	rtf := base64.StdEncoding.EncodeToString([]byte(`{\rtf1 hi}`))
	w = doJSON(t, router, http.MethodPut, "/notes/"+created.ID,
		map[string]string{"body": "Shopping\nmilk, eggs", "rtf": rtf})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", w.Code, w.Body.String())
	}
	var updated NoteDTO
	_ = json.Unmarshal(w.Body.Bytes(), &updated)
	if updated.Title != "Shopping" {
		t.Errorf("title = %q, want Shopping", updated.Title)
	}
	if updated.RTF != rtf {
		t.Errorf("rtf = %q, want round-tripped payload", updated.RTF)
	}
}

func TestUpdateNote_InvalidBase64RTF(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/notes", map[string]string{})
	var created NoteDTO
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	w = doJSON(t, router, http.MethodPut, "/notes/"+created.ID,
		map[string]string{"body": "x", "rtf": "%%% not base64 %%%"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestUpdateNote_UnknownID(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPut, "/notes/"+uuid.NewString(),
		map[string]string{"body": "x"})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestListNotes_SearchAndFolderFilter(t *testing.T) {
	st, router := testEnv(t, "")

	a := st.AddNote("Work")
	_ = st.UpdateNote(a.ID, "Standup\nblockers", nil)
	b := st.AddNote("Home")
	_ = st.UpdateNote(b.ID, "Chores\nlaundry", nil)

	w := doJSON(t, router, http.MethodGet, "/notes?q=laundry", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var list NoteListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Total != 1 || list.Notes[0].ID != b.ID.String() {
		t.Errorf("search returned %d notes", list.Total)
	}

	w = doJSON(t, router, http.MethodGet, "/notes?folder=Work", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Total != 1 || list.Notes[0].ID != a.ID.String() {
		t.Errorf("folder filter returned %d notes", list.Total)
	}
}

func TestDeleteNote(t *testing.T) {
	st, router := testEnv(t, "")
	n := st.AddNote("")

	w := doJSON(t, router, http.MethodDelete, "/notes/"+n.ID.String(), nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	if st.Has(n.ID) {
		t.Error("note still present after delete")
	}

	// Deleting again is still 204.
	w = doJSON(t, router, http.MethodDelete, "/notes/"+n.ID.String(), nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("repeat delete status = %d, want 204", w.Code)
	}
}

func TestMoveNote(t *testing.T) {
	st, router := testEnv(t, "")
	n := st.AddNote("")

	w := doJSON(t, router, http.MethodPost, "/notes/"+n.ID.String()+"/move",
		map[string]string{"folder": "Archive"})
	if w.Code != http.StatusOK {
		t.Fatalf("move status = %d", w.Code)
	}
	got, _ := st.GetNote(n.ID)
	if got.Folder != "Archive" {
		t.Errorf("folder = %q", got.Folder)
	}

	w = doJSON(t, router, http.MethodPost, "/notes/"+n.ID.String()+"/move",
		map[string]string{"folder": "A\nB"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("move to multiline folder status = %d, want 400", w.Code)
	}
}

func TestSelectAndSelectedNote(t *testing.T) {
	st, router := testEnv(t, "")
	a := st.AddNote("")
	b := st.AddNote("") // b is now selected

	w := doJSON(t, router, http.MethodPost, "/notes/"+a.ID.String()+"/select", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("select status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/notes/selected", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("selected status = %d", w.Code)
	}
	var sel NoteDTO
	_ = json.Unmarshal(w.Body.Bytes(), &sel)
	if sel.ID != a.ID.String() {
		t.Errorf("selected = %q, want %q (not %q)", sel.ID, a.ID, b.ID)
	}
}

func TestSelectedNote_NoSelection(t *testing.T) {
	st, router := testEnv(t, "")
	for _, n := range st.Notes() {
		st.DeleteNote(n.ID)
	}

	w := doJSON(t, router, http.MethodGet, "/notes/selected", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204 when nothing is selected", w.Code)
	}
}

func TestFolders(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/folders", map[string]string{"name": "  Ideas  "})
	if w.Code != http.StatusCreated {
		t.Fatalf("create folder status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/folders", map[string]string{"name": "   "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("blank folder status = %d, want 400", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/folders", map[string]string{"name": "A\nB"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("multiline folder status = %d, want 400", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/folders", nil)
	var list FolderListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Folders) != 2 || list.Folders[0] != "General" || list.Folders[1] != "Ideas" {
		t.Errorf("folders = %v, want [General Ideas]", list.Folders)
	}
}

func TestInvalidNoteID(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodGet, "/notes/not-a-uuid", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAuthTokenMode(t *testing.T) {
	_, router := testEnv(t, "secret-token")

	// No token.
	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", w.Code)
	}

	// Wrong token.
	req = httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token status = %d, want 401", w.Code)
	}

	// Correct token.
	req = httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token status = %d, want 200", w.Code)
	}
}
