// Package project defines the versioned mapping project document.
//
// A project belongs to one (system, direction, message) context and holds
// the user-maintained field catalogs, the enabled rubric codes and an
// ordered list of rounds, each with its own mapping rows. Exactly one round
// is active at a time.
//
// # Document shape (version 3)
//
//	{
//	  "version": 3,
//	  "updatedAt": "2026-01-02T10:00:00Z",
//	  "systemId": "translogica",
//	  "direction": "inbound",
//	  "messageId": "IFTMIN",
//	  "sourceCatalog": ["Order.Header.CustomerId"],
//	  "destinationCatalog": [],
//	  "rubricEnabled": ["CZ"],
//	  "rounds": [{"id": "R01", "rows": [
//	    {"id": "…", "source": "", "destination": "CZ.Name", "status": "open", "comment": "", "rubric": "CZ"}
//	  ]}],
//	  "activeRoundId": "R01"
//	}
//
// Validate accepts only the current version literal. Older documents are
// rejected, never migrated. Unknown fields are ignored.
package project
