/*
Package rcon implements the client side of the Source/Minecraft RCON remote
console protocol as described by Valve Software at
https://developer.valvesoftware.com/wiki/Source_RCON_Protocol: length
prefixed binary packets over TCP carrying administrative text commands and
their responses, including responses fragmented across multiple packets.

The package is layered the way the protocol is: [Packet] is the pure wire
codec, [Conn] owns one socket with its request ID counter and handshake, and
[Session] is the façade callers use to connect, execute commands, ping, and
reconnect after failures.
*/
package rcon
