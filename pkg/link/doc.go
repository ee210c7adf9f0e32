// Package link opens the byte channel an XMODEM transfer runs over.
//
// The device string selects the kind of link:
//
//	/dev/ttyUSB0, COM3          a local serial port
//	ws://host/path, wss://...   a serial bridge exposed over websocket
//	mqtt://host:port/prefix     a serial bridge exposed over MQTT topics
//	                            prefix/tx (to the device) and prefix/rx
package link
