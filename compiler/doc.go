/*

Process of compilation

Program Text ->
	lex ->
Tokens ->
	parse ->
Abstract Syntax Tree (ast) ->
	codegen ->
Builder calls into the Module (ir) ->
	print ->
IR Text

Each top-level form goes through the whole pipeline
before the next one is read.

*/
package compiler
