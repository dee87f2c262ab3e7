// seehuhn.de/go/roadview - a top-down viewer for traffic simulations
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package wsview

import "fmt"

// helloMessage is the first message sent to a new viewer.
func helloMessage(id string, width, height int) []byte {
	return fmt.Appendf(nil, `{"id":%q,"width":%d,"height":%d}`, id, width, height)
}

const viewerPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>roadview</title>
<style>
body { background: #000; color: #ccc; font-family: sans-serif; margin: 0; }
#bar { padding: 4px 8px; }
img { image-rendering: pixelated; display: block; }
</style>
</head>
<body>
<div id="bar"><span id="status">connecting</span> <button id="close">close window</button></div>
<img id="frame" alt="">
<script>
const status = document.getElementById("status");
const frame = document.getElementById("frame");
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
ws.binaryType = "blob";
ws.onmessage = (ev) => {
	if (typeof ev.data === "string") {
		const hello = JSON.parse(ev.data);
		status.textContent = "viewer " + hello.id + ", " + hello.width + "x" + hello.height;
		return;
	}
	const url = URL.createObjectURL(ev.data);
	frame.onload = () => URL.revokeObjectURL(url);
	frame.src = url;
};
ws.onclose = () => { status.textContent = "disconnected"; };
document.getElementById("close").onclick = () => ws.send("close");
</script>
</body>
</html>
`
