// Package directory is a file-backed user directory for the session
// service.
//
// Users, their roles and the care relation between clinicians and patients
// live in one YAML document:
//
//	users:
//	  - id: 1
//	    name: alice
//	    full_name: Alice Liddell
//	    role: patient
//	    hash: pbkdf2-sha256$100000$<salt>$<hash>
//	  - id: 2
//	    name: dr.house
//	    full_name: Gregory House
//	    role: clinician
//	    hash: pbkdf2-sha256$100000$<salt>$<hash>
//	serves:
//	  - clinician: 2
//	    patient: 1
//
// Passwords are stored as pbkdf2-sha256 digests; HashPassword produces the
// encoded form. Memory implements session.Directory.
package directory
