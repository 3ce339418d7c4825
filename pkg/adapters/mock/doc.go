// Package mock provides deterministic demo backends for every workflow port.
//
// They reproduce a scripted booking: a keyword extractor, a calendar with
// configurable busy slots, a fixed restaurant list, a dialer that returns
// mock_call_ handles and a conversation that confirms with token 4892.
package mock
