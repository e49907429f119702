// internal/session/store_test.go
//
// Unit-tests for the cookie Store.
//
// Context
// -------
// The Store is the single write path for both persistence layers (the
// structured record cookie and the guard's user_data projection), so these
// tests pin the behaviours everything else leans on:
//
//   • save → load round-trips a record verbatim,
//   • clear empties both layers and is idempotent,
//   • malformed payloads read as "not logged in", never as an error.
//
// A tiny cookie jar stands in for the browser: responses are applied in
// order, deletions included, and the resulting cookies ride the next
// request.

package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// jar emulates browser cookie storage across recorder/request pairs.
type jar map[string]string

func (j jar) apply(rr *httptest.ResponseRecorder) {
	for _, c := range rr.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(j, c.Name)
			continue
		}
		j[c.Name] = c.Value
	}
}

func (j jar) request() *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for name, val := range j {
		req.AddCookie(&http.Cookie{Name: name, Value: val})
	}
	return req
}

func adminRecord() Record {
	return Record{
		Token: "T",
		Admin: &Admin{ID: 1, Name: "A", Role: "owner"},
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store := NewStore(KindAdmin, false, nil)
	cookies := jar{}

	rr := httptest.NewRecorder()
	store.Save(rr, adminRecord())
	cookies.apply(rr)

	got, ok := store.Load(cookies.request())
	if !ok {
		t.Fatal("Load after Save: ok = false")
	}
	if got.Token != "T" {
		t.Fatalf("token = %q, want %q", got.Token, "T")
	}
	if got.Admin == nil || got.Admin.ID != 1 || got.Admin.Name != "A" || got.Admin.Role != "owner" {
		t.Fatalf("admin principal mangled: %+v", got.Admin)
	}
}

func TestStore_ClearThenLoadEmpty(t *testing.T) {
	store := NewStore(KindUser, false, nil)
	cookies := jar{}

	rr := httptest.NewRecorder()
	store.Save(rr, Record{Token: "tok", User: &User{ID: 7, IsStudent: 1}})
	cookies.apply(rr)

	rr = httptest.NewRecorder()
	store.Clear(rr)
	cookies.apply(rr)

	if _, ok := store.Load(cookies.request()); ok {
		t.Fatal("Load after Clear: ok = true, want false")
	}
	if _, present := cookies[UserDataCookie]; present {
		t.Fatal("user_data cookie survived Clear")
	}

	// Idempotent: clearing an empty session must not blow up or resurrect
	// anything.
	rr = httptest.NewRecorder()
	store.Clear(rr)
	cookies.apply(rr)
	if _, ok := store.Load(cookies.request()); ok {
		t.Fatal("second Clear resurrected a session")
	}
}

func TestStore_UserSaveWritesRoleProjection(t *testing.T) {
	store := NewStore(KindUser, false, nil)
	cookies := jar{}

	rr := httptest.NewRecorder()
	store.Save(rr, Record{Token: "tok", User: &User{ID: 9, IsStudent: 1, IsAffiliate: 0}})
	cookies.apply(rr)

	raw, present := cookies[UserDataCookie]
	if !present {
		t.Fatal("user_data cookie not written")
	}

	req := cookies.request()
	c, err := req.Cookie(UserDataCookie)
	if err != nil || c.Value != raw {
		t.Fatalf("user_data cookie not attached to request: %v", err)
	}
}

func TestStore_MalformedRecordCookieReadsEmpty(t *testing.T) {
	store := NewStore(KindUser, false, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "user_session", Value: "not%7Bjson"})

	if _, ok := store.Load(req); ok {
		t.Fatal("malformed record cookie parsed as a session")
	}
}

func TestStore_TokenWithoutPrincipalReadsEmpty(t *testing.T) {
	store := NewStore(KindAdmin, false, nil)
	cookies := jar{}

	rr := httptest.NewRecorder()
	store.Save(rr, Record{Token: "orphan"}) // no principal
	cookies.apply(rr)

	if _, ok := store.Load(cookies.request()); ok {
		t.Fatal("token-only record treated as authenticated")
	}
}

func TestBroadcaster_SeesSaveAndClear(t *testing.T) {
	bus := NewBroadcaster()
	events := bus.Subscribe()

	store := NewStore(KindAdmin, false, bus)
	rr := httptest.NewRecorder()
	store.Save(rr, adminRecord())
	store.Clear(rr)

	ev := <-events
	if ev.Op != OpSave || ev.Kind != KindAdmin {
		t.Fatalf("first event = %+v, want admin save", ev)
	}
	ev = <-events
	if ev.Op != OpClear {
		t.Fatalf("second event = %+v, want clear", ev)
	}
}
