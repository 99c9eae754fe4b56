package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"pgregory.net/rapid"

	"github.com/Sobot/zbor-gradjana/internal/handler/dto"
)

var callers = []string{"", "user-a", "user-b"}

// drawPatchBody builds a PATCH body that may be valid, carry unknown or
// server-owned fields, hold an invalid boundary or not be JSON at all.
func drawPatchBody(t *rapid.T) string {
	if rapid.IntRange(0, 9).Draw(t, "malformed") == 0 {
		return rapid.SampledFrom([]string{`{not json`, `[]`, `{"name":`, `"x"`}).Draw(t, "raw")
	}

	body := map[string]any{}
	if rapid.Bool().Draw(t, "withName") {
		body["name"] = rapid.StringMatching(`[A-Za-z ]{0,20}`).Draw(t, "name")
	}
	if rapid.Bool().Draw(t, "withLocation") {
		body["location"] = rapid.StringMatching(`[A-Za-z ]{0,20}`).Draw(t, "location")
	}
	switch rapid.IntRange(0, 3).Draw(t, "boundary") {
	case 1:
		body["boundary"] = nil
	case 2:
		body["boundary"] = map[string]any{"type": "Point"}
	case 3:
		body["boundary"] = json.RawMessage(boundaryJSON)
	}
	if rapid.Bool().Draw(t, "withUnknown") {
		body[rapid.SampledFrom([]string{"extra", "hack", "owner"}).Draw(t, "unknownKey")] = 1
	}
	if rapid.Bool().Draw(t, "withUserID") {
		body["user_id"] = rapid.SampledFrom(callers).Draw(t, "userID")
	}

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return string(raw)
}

// A caller that does not own the assembly is rejected with 401 whatever
// the body holds, and the stored record is left as it was.
func TestProperty_PatchRequiresOwnership(t *testing.T) {
	api := newTestAPI(t, belgrade)

	rapid.Check(t, func(rt *rapid.T) {
		owner := rapid.SampledFrom(callers[1:]).Draw(rt, "owner")
		caller := rapid.SampledFrom(callers).Draw(rt, "caller")
		if caller == owner {
			caller = ""
		}

		rec := api.do(http.MethodPost, "/api/v1/assemblies", owner, assemblyBody)
		if rec.Code != http.StatusCreated {
			rt.Fatalf("create: status %d (body %s)", rec.Code, rec.Body.String())
		}
		var created dto.AssemblyResponse
		if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
			rt.Fatalf("decode created assembly: %v", err)
		}

		body := drawPatchBody(rt)
		rec = api.do(http.MethodPatch, "/api/v1/assemblies/"+created.ID, caller, body)
		if rec.Code != http.StatusUnauthorized {
			rt.Fatalf("caller %q, owner %q, body %s: status %d (body %s)", caller, owner, body, rec.Code, rec.Body.String())
		}
		var resp dto.ErrorResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil || resp.Code != "UNAUTHORIZED" {
			rt.Fatalf("expected UNAUTHORIZED, got %+v (%v)", resp, err)
		}

		stored, err := api.store.GetAssemblyByID(t.Context(), created.ID)
		if err != nil {
			rt.Fatalf("GetAssemblyByID failed: %v", err)
		}
		if stored.Name != created.Name || stored.Location != created.Location || stored.UserID != owner {
			rt.Fatalf("assembly changed by rejected request: %+v", stored)
		}
	})
}
