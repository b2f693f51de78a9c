// Package audit records member management events to a durable log.
//
// Every role change, removal and invitation is written with the acting
// member, the target and the organization, so an administrator can
// reconstruct who granted what and when.
package audit
