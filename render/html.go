package render

import (
	"encoding/json"
	"fmt"

	"github.com/TFMV/cohortviz/cohort"
	"github.com/TFMV/cohortviz/models"
)

// HTMLRenderer outputs a self-contained interactive HTML page
type HTMLRenderer struct{}

// Name returns the name of the renderer
func (r *HTMLRenderer) Name() string {
	return "HTML Renderer"
}

// Description returns a description of the renderer
func (r *HTMLRenderer) Description() string {
	return "Renders the cohort graph as an interactive HTML page with pan, zoom, search, and tooltips"
}

// Render produces a single HTML file with the graph data embedded. When
// options.LiveEndpoint is set the page subscribes to that WebSocket path for
// positions; otherwise it runs its own simulation on the embedded snapshot.
func (r *HTMLRenderer) Render(graph *models.Graph, options *OutputOptions) ([]byte, error) {
	type jsNode struct {
		Slug           string  `json:"slug"`
		Name           string  `json:"name"`
		Website        string  `json:"website"`
		LinkedIn       string  `json:"linkedIn"`
		GitHub         string  `json:"gitHub"`
		Email          string  `json:"professionalEmail"`
		GraduationYear string  `json:"graduationYear"`
		Cohort         string  `json:"cohort"`
		X              float64 `json:"x"`
		Y              float64 `json:"y"`
		Size           float64 `json:"size"`
		Color          string  `json:"color"`
	}

	type jsEdge struct {
		Source string  `json:"source"`
		Target string  `json:"target"`
		Cohort string  `json:"cohort"`
		Weight float64 `json:"weight"`
		Color  string  `json:"color"`
	}

	nodes := make([]jsNode, 0, len(graph.Contributors))
	for i := range graph.Contributors {
		c := &graph.Contributors[i]
		nodes = append(nodes, jsNode{
			Slug:           c.Slug,
			Name:           c.Name,
			Website:        c.Website,
			LinkedIn:       c.LinkedIn,
			GitHub:         c.GitHub,
			Email:          c.Email,
			GraduationYear: c.GraduationYear,
			Cohort:         cohort.Key(c.GraduationYear),
			X:              c.X,
			Y:              c.Y,
			Size:           c.Size,
			Color:          c.Color,
		})
	}

	edges := make([]jsEdge, 0, len(graph.Edges))
	for i := range graph.Edges {
		e := &graph.Edges[i]
		edges = append(edges, jsEdge{
			Source: e.Source,
			Target: e.Target,
			Cohort: e.Cohort,
			Weight: e.Weight,
			Color:  e.Color,
		})
	}

	nodesJSON, err := json.Marshal(nodes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal nodes: %w", err)
	}
	edgesJSON, err := json.Marshal(edges)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal edges: %w", err)
	}

	minZoom := options.MinZoom
	if minZoom <= 0 {
		minZoom = 0.25
	}
	maxZoom := options.MaxZoom
	if maxZoom <= minZoom {
		maxZoom = 4.0
	}

	title := escapeXML(graph.Name)
	cohorts := len(cohort.Groups(graph.Contributors))

	html := fmt.Sprintf(pageTemplate,
		title,
		options.Background,
		title,
		len(graph.Contributors), cohorts, len(graph.Edges),
		nodesJSON, edgesJSON,
		graph.Width, graph.Height,
		minZoom, maxZoom,
		options.LiveEndpoint,
	)

	return []byte(html), nil
}

// pageTemplate is the full page. Literal percent signs are doubled for Sprintf.
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>%s</title>
<style>
html,body{margin:0;height:100%%;overflow:hidden}
body{background:%s;font-family:-apple-system,'Segoe UI',Roboto,sans-serif}
#graph{position:absolute;top:0;left:0;bottom:0;right:240px;cursor:grab}
#side{position:absolute;top:0;right:0;bottom:0;width:240px;background:#fff;border-left:1px solid #e3e3e3;display:flex;flex-direction:column}
#side header{padding:10px 12px;border-bottom:1px solid #eee}
#side h1{font-size:14px;margin:0 0 2px}
#stats{font-size:11px;color:#888}
#search{margin:8px 12px;padding:6px 8px;font-size:13px;border:1px solid #ccc;border-radius:4px;box-sizing:border-box;width:calc(100%% - 24px)}
#list{flex:1;overflow-y:auto;padding:4px 0}
.entry{display:flex;align-items:center;gap:6px;padding:5px 12px;font-size:12px;cursor:pointer}
.entry:hover{background:#f4f4f4}
.entry.active{background:#e8f0fe}
.entry.dim{opacity:0.35}
.entry.hit .nm{font-weight:600}
.entry .dot{width:8px;height:8px;border-radius:50%%;flex:none}
.entry .nm{flex:1;overflow:hidden;text-overflow:ellipsis;white-space:nowrap}
.entry .yr{font-size:10px;color:#999}
#legend{position:absolute;left:10px;bottom:10px;background:rgba(255,255,255,0.9);border:1px solid #e3e3e3;border-radius:4px;padding:6px 10px;font-size:11px}
#legend .key{display:flex;align-items:center;gap:5px;margin:2px 0}
#legend .dot{width:8px;height:8px;border-radius:50%%}
#tooltip{position:fixed;display:none;background:#fff;border:1px solid #d0d0d0;border-radius:6px;box-shadow:0 2px 10px rgba(0,0,0,0.15);padding:8px 10px;font-size:12px;max-width:320px;z-index:10}
#tooltip .tt-name{font-weight:600;font-size:13px}
#tooltip .tt-year{color:#888;font-size:11px;margin-bottom:4px}
#tooltip a{display:block;color:#1a73e8;text-decoration:none;margin:2px 0}
#tooltip.detailed{min-width:220px}
</style>
</head>
<body>
<canvas id="graph"></canvas>
<div id="side">
<header><h1>%s</h1><div id="stats">%d contributors &middot; %d cohorts &middot; %d connections</div></header>
<input id="search" type="text" placeholder="Search name or cohort..." autocomplete="off">
<div id="list"></div>
</div>
<div id="legend"></div>
<div id="tooltip"></div>
<script>
var NODES=%s;
var EDGES=%s;
var GW=%f,GH=%f,MINZOOM=%f,MAXZOOM=%f,LIVE='%s';
var PAD=8,GAP=10,MAXSTEPS=500;
var canvas=document.getElementById('graph'),ctx=canvas.getContext('2d');
var W,H;
function fit(){W=canvas.width=canvas.clientWidth;H=canvas.height=canvas.clientHeight}
var bySlug={};
NODES.forEach(function(n){n.vx=0;n.vy=0;n.pinned=false;n.dim=false;n.hit=false;bySlug[n.slug]=n});
EDGES.forEach(function(e){e.a=bySlug[e.source];e.b=bySlug[e.target]});
var camera={x:GW/2,y:GH/2,zoom:1};
function toScreen(x,y){return[(x-camera.x)*camera.zoom+W/2,(y-camera.y)*camera.zoom+H/2]}
function toWorld(sx,sy){return[(sx-W/2)/camera.zoom+camera.x,(sy-H/2)/camera.zoom+camera.y]}

/* simulation */
var temp=1,stable=false,steps=0,budget=MAXSTEPS;
function atRest(){return stable||steps>=budget}
function reheat(){temp=Math.max(temp,0.3);stable=false;budget=steps+150}
function tick(){
 if(LIVE)return;
 if(atRest())return;
 var k=Math.sqrt(GW*GH/Math.max(1,NODES.length));
 var i,j,n,a,b,e,dx,dy,d,f;
 for(i=0;i<NODES.length;i++){n=NODES[i];n.fx=0;n.fy=0}
 for(i=0;i<NODES.length;i++){
  a=NODES[i];
  for(j=i+1;j<NODES.length;j++){
   b=NODES[j];
   dx=a.x-b.x;dy=a.y-b.y;d=Math.sqrt(dx*dx+dy*dy)||0.1;
   f=k*k/d;
   a.fx+=dx/d*f;a.fy+=dy/d*f;b.fx-=dx/d*f;b.fy-=dy/d*f;
   var minD=a.size+b.size+4;
   if(d<minD){f=(minD-d)/2;a.fx+=dx/d*f;a.fy+=dy/d*f;b.fx-=dx/d*f;b.fy-=dy/d*f}
  }
  dx=GW/2-a.x;dy=GH/2-a.y;d=Math.sqrt(dx*dx+dy*dy);
  if(d>1){f=0.05*k*(d/Math.min(GW,GH));a.fx+=dx/d*f;a.fy+=dy/d*f}
 }
 for(i=0;i<EDGES.length;i++){
  e=EDGES[i];if(!e.a||!e.b)continue;
  dx=e.b.x-e.a.x;dy=e.b.y-e.a.y;d=Math.sqrt(dx*dx+dy*dy)||0.1;
  f=d*d/150*0.015*(1+e.weight);
  e.a.fx+=dx/d*f;e.a.fy+=dy/d*f;e.b.fx-=dx/d*f;e.b.fy-=dy/d*f;
 }
 var energy=0,moving=0;
 for(i=0;i<NODES.length;i++){
  n=NODES[i];
  if(n.pinned){n.vx=0;n.vy=0;continue}
  moving++;
  energy+=Math.sqrt(n.fx*n.fx+n.fy*n.fy);
  n.vx=(n.vx+n.fx*temp)*0.85;n.vy=(n.vy+n.fy*temp)*0.85;
  n.x+=n.vx;n.y+=n.vy;
  n.x=Math.min(Math.max(n.x,k*0.5),GW-k*0.5);
  n.y=Math.min(Math.max(n.y,k*0.5),GH-k*0.5);
 }
 if(moving===0||energy/Math.max(1,moving)<0.05)stable=true;
 temp*=0.95;steps++;
}

/* interaction */
var hovered=null,active=null,drag=null,pan=null;
var dragMoved=false,lastDragMoved=false,panMoved=false;
function mouse(ev){var r=canvas.getBoundingClientRect();return[ev.clientX-r.left,ev.clientY-r.top]}
function findNode(mx,my){
 for(var i=NODES.length-1;i>=0;i--){
  var n=NODES[i],s=toScreen(n.x,n.y);
  var dx=mx-s[0],dy=my-s[1],r=n.size*camera.zoom+4;
  if(dx*dx+dy*dy<=r*r)return n;
 }
 return null;
}
function send(m){if(sock&&sock.readyState===1)sock.send(JSON.stringify(m))}
canvas.addEventListener('mousedown',function(ev){
 var m=mouse(ev),n=findNode(m[0],m[1]);
 panMoved=false;lastDragMoved=false;
 if(n){
  drag=n;dragMoved=false;
  if(!LIVE&&atRest())reheat();
  n.pinned=true;
  send({type:'pin',slug:n.slug,x:n.x,y:n.y});
 }else{
  pan={sx:ev.clientX,sy:ev.clientY,cx:camera.x,cy:camera.y};
 }
});
canvas.addEventListener('mousemove',function(ev){
 var m=mouse(ev);
 if(drag){
  dragMoved=true;
  var p=toWorld(m[0],m[1]);
  drag.x=p[0];drag.y=p[1];drag.vx=0;drag.vy=0;
  send({type:'move',slug:drag.slug,x:drag.x,y:drag.y});
  return;
 }
 if(pan){
  panMoved=true;
  camera.x=pan.cx-(ev.clientX-pan.sx)/camera.zoom;
  camera.y=pan.cy-(ev.clientY-pan.sy)/camera.zoom;
  return;
 }
 var n=findNode(m[0],m[1]);
 if(n!==hovered){hovered=n;if(!active)updateTooltip()}
});
window.addEventListener('mouseup',function(){
 if(drag){
  drag.pinned=false;
  send({type:'release',slug:drag.slug});
  if(!LIVE)stable=false;
  lastDragMoved=dragMoved;
  drag=null;
 }
 pan=null;
});
canvas.addEventListener('wheel',function(ev){
 ev.preventDefault();
 var f=ev.deltaY<0?1.1:0.9;
 camera.zoom=Math.min(Math.max(camera.zoom*f,MINZOOM),MAXZOOM);
},{passive:false});
document.addEventListener('click',function(ev){
 if(ev.target.closest('#tooltip'))return;
 if(ev.target===canvas){
  if(lastDragMoved||panMoved){lastDragMoved=false;panMoved=false;return}
  var m=mouse(ev),n=findNode(m[0],m[1]);
  if(n)activate(n);else clearActive();
  return;
 }
 var ent=ev.target.closest('.entry');
 if(ent){activate(bySlug[ent.dataset.slug]);return}
 clearActive();
});
window.addEventListener('resize',function(){location.reload()});

/* selection */
function activate(n){
 active=n;hovered=null;
 var els=document.querySelectorAll('#list .entry');
 for(var i=0;i<els.length;i++)els[i].classList.toggle('active',els[i].dataset.slug===n.slug);
 var el=document.querySelector('#list .entry[data-slug="'+n.slug+'"]');
 if(el)el.scrollIntoView({block:'nearest'});
 updateTooltip();
}
function clearActive(){
 if(!active)return;
 active=null;
 var els=document.querySelectorAll('#list .entry.active');
 for(var i=0;i<els.length;i++)els[i].classList.remove('active');
 updateTooltip();
}

/* tooltip */
function addLink(tt,label,url){
 if(!url)return;
 var a=document.createElement('a');
 a.href=url;a.target='_blank';a.rel='noopener';a.textContent=label;
 tt.appendChild(a);
}
function updateTooltip(){
 var tt=document.getElementById('tooltip');
 var n=active||hovered;
 if(!n){tt.style.display='none';return}
 while(tt.firstChild)tt.removeChild(tt.firstChild);
 tt.className=active?'detailed':'';
 var nm=document.createElement('div');nm.className='tt-name';nm.textContent=n.name;tt.appendChild(nm);
 if(n.graduationYear){var yr=document.createElement('div');yr.className='tt-year';yr.textContent=n.graduationYear;tt.appendChild(yr)}
 if(active){
  addLink(tt,'Website',n.website);
  addLink(tt,'LinkedIn',n.linkedIn);
  addLink(tt,'GitHub',n.gitHub);
  if(n.professionalEmail)addLink(tt,'Email','mailto:'+n.professionalEmail);
 }
 tt.style.display='block';
 positionTooltip();
}
function positionTooltip(){
 var tt=document.getElementById('tooltip');
 var n=active||hovered;
 if(!n||tt.style.display==='none')return;
 var s=toScreen(n.x,n.y),r=n.size*camera.zoom;
 var det=!!active;
 var w=tt.offsetWidth,h=tt.offsetHeight;
 if(!w||!h){w=det?300:180;h=det?160:48}
 var left=s[0]-w/2,top=s[1]-r-GAP-h;
 left=Math.min(Math.max(left,PAD),window.innerWidth-w-PAD);
 if(top<PAD){
  top=s[1]+r+GAP;
  if(top+h>window.innerHeight-PAD){
   top=s[1]-h/2;left=s[0]+r+GAP;
   if(left+w>window.innerWidth-PAD)left=s[0]-r-GAP-w;
  }
 }
 left=Math.min(Math.max(left,PAD),window.innerWidth-w-PAD);
 top=Math.min(Math.max(top,PAD),window.innerHeight-h-PAD);
 tt.style.left=left+'px';tt.style.top=top+'px';
}

/* search */
function fuzzy(t,q){var i=0;for(var j=0;j<t.length&&i<q.length;j++){if(t[j]===q[i])i++}return i>=q.length}
function score(t,q){
 t=t.toLowerCase();
 if(t.indexOf(q)===0)return 100;
 if(t.indexOf(q)>=0)return 50;
 if(fuzzy(t,q))return 25;
 return 0;
}
function applySearch(raw){
 var q=raw.trim().toLowerCase();
 var best=null,bestScore=0;
 NODES.forEach(function(n){
  var el=document.querySelector('#list .entry[data-slug="'+n.slug+'"]');
  if(!q){
   n.dim=false;n.hit=false;
   if(el){el.classList.remove('dim');el.classList.remove('hit')}
   return;
  }
  var sc=Math.max(score(n.name,q),score(n.graduationYear,q));
  n.hit=sc>0;n.dim=sc===0;
  if(el){el.classList.toggle('dim',n.dim);el.classList.toggle('hit',n.hit)}
  if(sc>bestScore){bestScore=sc;best=n}
 });
 if(best){
  var el=document.querySelector('#list .entry[data-slug="'+best.slug+'"]');
  if(el)el.scrollIntoView({block:'nearest'});
 }
}
var input=document.getElementById('search');
input.addEventListener('input',function(){applySearch(input.value)});
input.addEventListener('keydown',function(ev){
 if(ev.key==='Escape'){input.value='';applySearch('')}
});
document.addEventListener('keydown',function(ev){
 if(ev.key!=='r'||document.activeElement===input)return;
 if(LIVE)send({type:'reheat'});else reheat();
});

/* sidebar and legend */
var list=document.getElementById('list');
NODES.forEach(function(n){
 var el=document.createElement('div');el.className='entry';el.dataset.slug=n.slug;
 var dot=document.createElement('span');dot.className='dot';dot.style.background=n.color;el.appendChild(dot);
 var nm=document.createElement('span');nm.className='nm';nm.textContent=n.name;el.appendChild(nm);
 if(n.graduationYear){var yr=document.createElement('span');yr.className='yr';yr.textContent=n.graduationYear;el.appendChild(yr)}
 list.appendChild(el);
});
var legend=document.getElementById('legend'),seen={};
NODES.forEach(function(n){
 if(seen[n.cohort])return;
 seen[n.cohort]=true;
 var el=document.createElement('div');el.className='key';
 var dot=document.createElement('span');dot.className='dot';dot.style.background=n.color;el.appendChild(dot);
 el.appendChild(document.createTextNode(n.cohort));
 legend.appendChild(el);
});

/* live positions */
var sock=null;
if(LIVE){
 var proto=location.protocol==='https:'?'wss://':'ws://';
 sock=new WebSocket(proto+location.host+LIVE);
 sock.onmessage=function(ev){
  var m=JSON.parse(ev.data);
  if(m.type==='reload'){location.reload();return}
  if(m.type!=='positions')return;
  m.nodes.forEach(function(p){
   var n=bySlug[p.slug];
   if(!n||n===drag)return;
   n.x=p.x;n.y=p.y;n.pinned=p.pinned;
  });
 };
}

/* render loop */
function draw(){
 ctx.clearRect(0,0,W,H);
 var i,n,e,s,t,r;
 for(i=0;i<EDGES.length;i++){
  e=EDGES[i];if(!e.a||!e.b)continue;
  s=toScreen(e.a.x,e.a.y);t=toScreen(e.b.x,e.b.y);
  ctx.globalAlpha=(e.a.dim&&e.b.dim)?0.15:0.5;
  ctx.strokeStyle=e.color;
  ctx.lineWidth=1;
  ctx.beginPath();ctx.moveTo(s[0],s[1]);ctx.lineTo(t[0],t[1]);ctx.stroke();
 }
 for(i=0;i<NODES.length;i++){
  n=NODES[i];s=toScreen(n.x,n.y);r=n.size*camera.zoom;
  ctx.globalAlpha=n.dim?0.25:1;
  ctx.beginPath();ctx.arc(s[0],s[1],r,0,Math.PI*2);
  ctx.fillStyle=n.color;ctx.fill();
  if(n===active||n===hovered||n.hit){
   ctx.lineWidth=2;
   ctx.strokeStyle=n===active?'#111':'#f4b400';
   ctx.stroke();
  }
  if(n.pinned){
   ctx.beginPath();ctx.arc(s[0],s[1],2,0,Math.PI*2);
   ctx.fillStyle='#111';ctx.fill();
  }
  if(camera.zoom>0.6){
   ctx.globalAlpha=n.dim?0.25:0.9;
   ctx.fillStyle='#333';ctx.font='11px sans-serif';ctx.textAlign='center';
   ctx.fillText(n.name,s[0],s[1]+r+12);
  }
 }
 ctx.globalAlpha=1;
}
function loop(){tick();draw();positionTooltip();requestAnimationFrame(loop)}
fit();
camera.zoom=Math.min(Math.max(Math.min(W/GW,H/GH)*0.9,MINZOOM),MAXZOOM);
loop();
</script>
</body>
</html>
`
