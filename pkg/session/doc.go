/*
Package session serializes the sessions of one requester.

A requester can only negotiate one reservation at a time. The Guard enforces
this within a process with a reference-counted mutex per requester, and across
replicas with an optional distributed lock.
*/
package session
