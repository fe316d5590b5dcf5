package sync

import "testing"

func TestNormalizeStatusEnvelopeVariants(t *testing.T) {
	// The same logical status change has shipped in several shapes; all
	// of them must project onto one canonical event.
	payloads := map[string]string{
		"nested event object": `{
			"event": {"event_type": "issue.status_changed"},
			"issue": {"id": 42, "status": {"code": "resolved", "name": "Решена"}}
		}`,
		"flat event name": `{
			"event": "status_changed",
			"issue_id": 42,
			"new_status": "resolved",
			"old_status": "in_progress"
		}`,
		"data wrapper": `{
			"event_type": "issue.status_changed",
			"data": {"issue_id": 42, "status": "resolved"}
		}`,
		"string ticket id": `{
			"type": "status_changed",
			"id": "42",
			"status": "resolved"
		}`,
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			evt := Normalize([]byte(payload))
			if evt.Kind != KindStatusChanged {
				t.Fatalf("Kind = %q, want %q", evt.Kind, KindStatusChanged)
			}
			if evt.TicketID != 42 {
				t.Fatalf("TicketID = %d, want 42", evt.TicketID)
			}
			if evt.Status != "resolved" {
				t.Fatalf("Status = %q, want resolved", evt.Status)
			}
		})
	}
}

func TestNormalizeCommentVariants(t *testing.T) {
	payloads := map[string]string{
		"named event": `{
			"event": {"event_type": "comment.created", "comment": {"id": 7, "content": "hi", "public": true}},
			"issue": {"id": 42}
		}`,
		"unlabeled with comment body": `{
			"issue_id": 42,
			"comment": {"id": 7, "content": "hi", "is_public": "true"}
		}`,
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			evt := Normalize([]byte(payload))
			if evt.Kind != KindCommentCreated {
				t.Fatalf("Kind = %q, want %q", evt.Kind, KindCommentCreated)
			}
			if evt.TicketID != 42 || evt.CommentID != 7 {
				t.Fatalf("ids = (%d, %d), want (42, 7)", evt.TicketID, evt.CommentID)
			}
			if evt.CommentBody != "hi" {
				t.Fatalf("CommentBody = %q, want hi", evt.CommentBody)
			}
			if !evt.IsPublic {
				t.Fatal("IsPublic = false, want true")
			}
		})
	}
}

func TestNormalizePublicFlagDefaultsToPrivate(t *testing.T) {
	evt := Normalize([]byte(`{
		"event": "new_comment",
		"issue_id": 42,
		"comment": {"id": 7, "content": "internal note"}
	}`))

	if evt.IsPublic {
		t.Fatal("missing visibility flag must default to private")
	}
}

func TestNormalizeAuthor(t *testing.T) {
	evt := Normalize([]byte(`{
		"event": "new_comment",
		"issue_id": 42,
		"comment": {"id": 7, "content": "hi", "public": true},
		"author": {"id": 99, "type": "employee", "first_name": "Ivan", "last_name": "Petrov"}
	}`))

	if evt.AuthorID != 99 {
		t.Fatalf("AuthorID = %d, want 99", evt.AuthorID)
	}
	if evt.AuthorKind != "employee" {
		t.Fatalf("AuthorKind = %q, want employee", evt.AuthorKind)
	}
	if evt.AuthorName != "Ivan Petrov" {
		t.Fatalf("AuthorName = %q, want Ivan Petrov", evt.AuthorName)
	}
}

func TestNormalizeNeverFails(t *testing.T) {
	for _, raw := range []string{"", "not json", "[]", `{"event": 5}`, `{"event": "new_comment"}`} {
		evt := Normalize([]byte(raw))
		if evt.Kind != KindUnknown {
			t.Errorf("Normalize(%q).Kind = %q, want unknown", raw, evt.Kind)
		}
	}
}

func TestNormalizeDemotesMissingTicketID(t *testing.T) {
	evt := Normalize([]byte(`{"event": "status_changed", "status": "resolved"}`))
	if evt.Kind != KindUnknown {
		t.Fatalf("event without ticket id must be demoted, got %q", evt.Kind)
	}
}
