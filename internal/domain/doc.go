// Package domain contains the core business entities of the dashboard:
// employees, users, tasks, remarks, notifications and audit entries, together
// with the enumerations and validation rules that govern them. It is
// independent of any transport or storage mechanism.
package domain
