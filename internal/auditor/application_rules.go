package auditor

import (
	"sqlcheck/internal/model"
)

func applicationRules() []Rule {
	return []Rule{
		readablePasswords,
	}
}

// readablePasswords flags passwords stored or compared in clear text.
var readablePasswords = Rule{
	ID:       "readable-passwords",
	Title:    "Readable Passwords",
	Category: model.CategoryApplication,
	Risk:     model.RiskWarning,
	Matcher:  Text(`(password varchar)|(password text)|(password =)|(pwd varchar)|(pwd text)|(pwd =)`),
	Message: `● Do not store readable passwords:
A password kept in clear text, or compared in clear text in a query, can be
read by anyone with access to the database, its backups or its query logs.
Store a salted hash computed with a slow password hashing function and
compare hashes in the application.`,
}
