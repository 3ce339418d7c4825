// Package console is a terminal speech boundary: prompts are printed in
// colour and replies are read line by line with a listen timeout.
package console
