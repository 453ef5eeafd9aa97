// Package ircc reads the remote command list of the legacy IRCC/CERS
// control endpoint that predates the scalar web API. Many devices keep
// it alive alongside scalar web and list extended commands there that
// getRemoteControllerInfo omits.
//
// The lookup is a three-step XML chase:
//
//  1. GET the device descriptor and find the X_CERS_ActionList_URL
//     extension element.
//  2. GET the action list and find the entry named
//     "getRemoteCommandList".
//  3. GET that action's URL and decode the command entries.
//
// Relative URLs at each step resolve against the document they came
// from. Every step is fallible; callers treat the whole lookup as
// best-effort.
package ircc
