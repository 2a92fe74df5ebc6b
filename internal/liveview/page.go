package liveview

import (
	"html/template"
	"io"
)

// pageData is the first paint. Later changes arrive over the websocket.
type pageData struct {
	View
	Main template.HTML
}

// writePage renders the page shell around v. The main region is the
// renderer's markup and is embedded as is.
func writePage(w io.Writer, v View) error {
	return pageTemplate.Execute(w, pageData{View: v, Main: template.HTML(v.Main)})
}

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body{font-family:system-ui,sans-serif;margin:0;background:#f5f6f8;color:#1f2328}
header{display:flex;align-items:center;gap:1rem;padding:1rem 2rem;background:#fff;border-bottom:1px solid #d0d7de}
header h1{flex:1;font-size:1.4rem;margin:0}
main{padding:1.5rem 2rem}
.category{margin-bottom:2rem}
.links-grid{display:grid;grid-template-columns:repeat(auto-fill,minmax(260px,1fr));gap:1rem}
.link-card{display:flex;justify-content:space-between;padding:1rem;background:#fff;border:1px solid #d0d7de;border-radius:8px;color:inherit;text-decoration:none}
.link-card:hover{border-color:#0969da}
.link-url,.link-description{font-size:.85rem;color:#59636e}
.tag{display:inline-block;margin:.25rem .25rem 0 0;padding:0 .4rem;border-radius:4px;background:#ddf4ff;font-size:.75rem}
.link-status{font-size:.75rem}
.link-status.maintenance{color:#9a6700}
.link-status.deprecated{color:#cf222e}
.error-message{padding:1rem;border:1px solid #cf222e;border-radius:8px;background:#fff}
#notices{position:fixed;right:1rem;bottom:1rem}
.notice{margin-top:.5rem;padding:.5rem 1rem;border-radius:6px;background:#1f2328;color:#fff}
</style>
</head>
<body>
<header>
<h1 id="dashboard-title">{{.Header}}</h1>
<select id="config-selector">{{range .Selector}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end}}</select>
<button type="button" id="preferences-btn">Preferences</button>
</header>
<main id="dashboard-content">{{.Main}}</main>
<div id="notices"></div>
<script>
(function () {
  var selector = document.getElementById("config-selector");
  var content = document.getElementById("dashboard-content");
  var header = document.getElementById("dashboard-title");
  var notices = document.getElementById("notices");

  function post(path, body) {
    return fetch(path, {
      method: "POST",
      headers: {"Content-Type": "application/json"},
      body: JSON.stringify(body || {})
    });
  }

  function setOptions(options) {
    selector.textContent = "";
    (options || []).forEach(function (o) {
      var opt = document.createElement("option");
      opt.value = o.value;
      opt.textContent = o.label;
      opt.selected = !!o.selected;
      selector.appendChild(opt);
    });
  }

  function notify(text) {
    var el = document.createElement("div");
    el.className = "notice";
    el.textContent = text;
    notices.appendChild(el);
    setTimeout(function () { el.remove(); }, 4000);
  }

  function apply(p) {
    switch (p.op) {
    case "view":
      document.title = p.view.title;
      header.textContent = p.view.header;
      content.innerHTML = p.view.main;
      setOptions(p.view.selector);
      break;
    case "selector": setOptions(p.options); break;
    case "main": content.innerHTML = p.text; break;
    case "title": document.title = p.text; break;
    case "header": header.textContent = p.text; break;
    case "notify": notify(p.text); break;
    }
  }

  selector.addEventListener("change", function () {
    post("/events/switch", {config: selector.value});
  });

  content.addEventListener("click", function (e) {
    if (e.target.closest("[data-action=retry]")) {
      post("/events/retry");
      return;
    }
    var card = e.target.closest(".link-card");
    var name = card && card.querySelector(".link-name");
    if (name) {
      post("/events/activate", {link: name.textContent});
    }
  });

  document.getElementById("preferences-btn").addEventListener("click", function () {
    post("/events/preferences");
  });

  document.addEventListener("keydown", function (e) {
    if (!(e.ctrlKey || e.metaKey)) {
      return;
    }
    var key = e.key.toLowerCase();
    if (key !== "k" && key !== "r") {
      return;
    }
    e.preventDefault();
    post("/events/key", {mod: true, key: key});
  });

  function connect() {
    var scheme = location.protocol === "https:" ? "wss:" : "ws:";
    var ws = new WebSocket(scheme + "//" + location.host + "/ws");
    ws.onmessage = function (m) { apply(JSON.parse(m.data)); };
    ws.onclose = function () { setTimeout(connect, 1000); };
  }
  connect();
})();
</script>
</body>
</html>
`
