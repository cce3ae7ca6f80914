/*
Package escrow defines the contracts between an atomic token-swap program
and the deterministic ledger environment hosting it.

The package holds the types every other package builds on: 32-byte ledger
addresses, untrusted per-invocation account views, the instruction wire
format, and the interfaces of the three collaborator services the program
calls but does not implement (address derivation, asset transfer and
account lifecycle).

The program core lives in the program package. Reference implementations
of the collaborators live in the token and host packages and are used to
exercise the core the same way a hosting environment would.
*/
package escrow
