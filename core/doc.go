// Package core provides the conversation content types shared by every model
// adapter in modelmesh: role-based Content made of ordered Parts (text,
// function calls and function responses). Provider packages convert these
// into their vendor specific message formats and back.
package core
