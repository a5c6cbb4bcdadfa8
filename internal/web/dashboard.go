package web

// Control dashboard: engine status with start/stop, live plan feed, logs.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Sentinel</title>
  <link rel="preconnect" href="https://fonts.googleapis.com">
  <link rel="preconnect" href="https://fonts.gstatic.com" crossorigin>
  <link href="https://fonts.googleapis.com/css2?family=Press+Start+2P&family=Space+Mono:wght@400;700&display=swap" rel="stylesheet">
  <style>
    :root {
      --bg:#ffffff;
      --ink:#111111;
      --ink-mid:#4d4d4d;
      --ink-soft:#9c9c9c;
      --panel:#f6f6f6;
    }
    * { box-sizing:border-box; }
    body {
      margin:0;
      min-height:100vh;
      display:flex;
      align-items:center;
      justify-content:center;
      padding:2rem;
      background:var(--bg);
      color:var(--ink);
      font-family:'Space Mono','JetBrains Mono',monospace;
    }
    body::before {
      content:'';
      position:fixed;
      inset:0;
      background:
        linear-gradient(90deg, rgba(0,0,0,.02) 1px, transparent 1px),
        linear-gradient(rgba(0,0,0,.02) 1px, transparent 1px);
      background-size:12px 12px;
      pointer-events:none;
    }
    #app {
      width:min(1300px, 96vw);
      background:var(--panel);
      border:3px solid var(--ink);
      padding:2rem;
      position:relative;
      box-shadow:12px 12px 0 rgba(0,0,0,.15);
      display:grid;
      grid-template-columns:1fr 420px;
      gap:2rem;
    }
    #app::after {
      content:'';
      position:absolute;
      inset:8px;
      border:1px dashed rgba(0,0,0,.15);
      pointer-events:none;
    }
    .main-content { display:flex; flex-direction:column; gap:1.5rem; }
    header { display:flex; justify-content:space-between; align-items:flex-start; gap:1rem; }
    .eyebrow {
      font-family:'Press Start 2P','Space Mono',monospace;
      font-size:.55rem;
      text-transform:uppercase;
      letter-spacing:.2em;
      margin:0;
    }
    .status {
      font-size:.65rem;
      text-transform:uppercase;
      letter-spacing:.1em;
      border:2px solid var(--ink);
      padding:.4rem .9rem;
      background:#ffffff;
      box-shadow:4px 4px 0 rgba(0,0,0,.15);
    }
    .status.running { border-color:#1b9aaa; color:#1b9aaa; }
    .controls { display:flex; gap:1rem; }
    .btn {
      font-family:'Space Mono',monospace;
      font-size:.7rem;
      font-weight:700;
      text-transform:uppercase;
      letter-spacing:.15em;
      padding:.8rem 1.6rem;
      border:3px solid var(--ink);
      background:#fff;
      color:var(--ink);
      cursor:pointer;
      box-shadow:6px 6px 0 rgba(0,0,0,.15);
    }
    .btn:active { transform:translate(3px,3px); box-shadow:3px 3px 0 rgba(0,0,0,.15); }
    .btn:disabled { color:var(--ink-soft); border-color:var(--ink-soft); cursor:default; }
    .meta { display:flex; flex-wrap:wrap; gap:.5rem; }
    .pill {
      font-size:.55rem;
      letter-spacing:.12em;
      text-transform:uppercase;
      padding:.35rem .7rem;
      border:2px solid var(--ink);
      background:#fefefe;
      box-shadow:4px 4px 0 rgba(0,0,0,.15);
    }
    .pill.muted { color:var(--ink-mid); border-color:var(--ink-mid); }
    .logs {
      border:3px solid var(--ink);
      background:#fff;
      box-shadow:8px 8px 0 rgba(0,0,0,.15);
      padding:1rem;
      height:320px;
      overflow-y:auto;
      font-size:.62rem;
      line-height:1.6;
      white-space:pre-wrap;
      word-break:break-all;
    }
    .section-title {
      font-family:'Press Start 2P','Space Mono',monospace;
      font-size:.6rem;
      text-transform:uppercase;
      letter-spacing:.15em;
      margin:0 0 .8rem 0;
    }
    .plans-sidebar {
      display:flex;
      flex-direction:column;
      gap:1rem;
      max-height:calc(100vh - 8rem);
      overflow-y:auto;
    }
    .plan-card {
      border:2px solid var(--ink);
      padding:1rem;
      background:#fff;
      box-shadow:4px 4px 0 rgba(0,0,0,.12);
      font-size:.7rem;
      line-height:1.4;
    }
    .plan-header {
      display:flex;
      justify-content:space-between;
      align-items:center;
      margin-bottom:.8rem;
      padding-bottom:.8rem;
      border-bottom:1px dashed var(--ink-soft);
    }
    .plan-action { font-weight:700; text-transform:uppercase; letter-spacing:.1em; }
    .plan-action.LONG { color:#1b9aaa; }
    .plan-action.SHORT { color:#d7263d; }
    .plan-action.WAIT { color:#9c9c9c; }
    .plan-time { font-size:.6rem; color:var(--ink-mid); }
    .plan-symbol { font-weight:700; margin-bottom:.5rem; }
    .plan-meta { margin-top:.8rem; display:flex; flex-wrap:wrap; gap:.4rem; }
    .meta-pill {
      font-size:.55rem;
      padding:.25rem .5rem;
      background:var(--panel);
      border:1px solid var(--ink-soft);
    }
    .meta-pill.trade { border-color:#1b9aaa; color:#1b9aaa; font-weight:700; }
    .plan-rationale {
      margin-top:.8rem;
      font-size:.65rem;
      color:var(--ink-mid);
      font-style:italic;
    }
    .empty-state {
      border:2px dashed var(--ink-soft);
      padding:2rem;
      text-align:center;
      font-size:.8rem;
      letter-spacing:.12em;
      text-transform:uppercase;
      color:var(--ink-mid);
    }
    @media (max-width:900px) {
      body { padding:1rem; }
      #app { padding:1.2rem; grid-template-columns:1fr; }
      .plans-sidebar { max-height:400px; }
    }
  </style>
</head>
<body>
  <div id="app">
    <div class="main-content">
      <header>
        <div>
          <p class="eyebrow">sentinel dashboard</p>
        </div>
        <div id="engine-status" class="status">Loading…</div>
      </header>
      <div class="controls">
        <button id="btn-start" class="btn">Start</button>
        <button id="btn-stop" class="btn">Stop</button>
      </div>
      <div class="meta">
        <span id="phase-pill" class="pill muted">phase: idle</span>
        <span id="symbol-pill" class="pill muted" style="display:none"></span>
      </div>
      <section>
        <h3 class="section-title">Logs</h3>
        <div id="logs" class="logs">waiting for logs…</div>
      </section>
    </div>
    <aside class="plans-sidebar">
      <h3 class="section-title">Plans</h3>
      <div id="plans"><div id="emptyState" class="empty-state">No plans yet</div></div>
    </aside>
  </div>
<script>
const statusEl = document.getElementById('engine-status');
const phaseEl = document.getElementById('phase-pill');
const symbolEl = document.getElementById('symbol-pill');
const logsEl = document.getElementById('logs');
const plansEl = document.getElementById('plans');
const MAX_PLANS = 50;

function formatTime(ts){
  if(!ts) return '';
  const date = new Date(ts);
  if(Number.isNaN(date.getTime())) return '';
  return date.toLocaleTimeString([], { hour12:false });
}

async function refreshStatus(){
  try{
    const res = await fetch('/api/status');
    const st = await res.json();
    statusEl.textContent = st.running ? 'Running' : 'Stopped';
    statusEl.classList.toggle('running', st.running);
    phaseEl.textContent = 'phase: ' + (st.phase || 'idle');
    if(st.current_symbol){
      symbolEl.style.display = '';
      symbolEl.textContent = 'analyzing: ' + st.current_symbol;
    }else{
      symbolEl.style.display = 'none';
    }
    if(Array.isArray(st.recent_logs) && st.recent_logs.length){
      const atBottom = logsEl.scrollTop + logsEl.clientHeight >= logsEl.scrollHeight - 10;
      logsEl.textContent = st.recent_logs.join('\n');
      if(atBottom){ logsEl.scrollTop = logsEl.scrollHeight; }
    }
  }catch(err){
    statusEl.textContent = 'Unreachable';
    statusEl.classList.remove('running');
  }
}

async function post(path){
  try{
    const res = await fetch(path, { method:'POST' });
    await res.json();
  }catch(err){
    console.error(path, err);
  }
  refreshStatus();
}

document.getElementById('btn-start').addEventListener('click', () => post('/api/start'));
document.getElementById('btn-stop').addEventListener('click', () => post('/api/stop'));

function createPlanCard(plan){
  const card = document.createElement('div');
  card.className = 'plan-card';

  const header = document.createElement('div');
  header.className = 'plan-header';
  const action = document.createElement('div');
  action.className = 'plan-action ' + plan.action;
  action.textContent = plan.action;
  const time = document.createElement('div');
  time.className = 'plan-time';
  time.textContent = formatTime(plan.ts);
  header.append(action, time);
  card.appendChild(header);

  const symbol = document.createElement('div');
  symbol.className = 'plan-symbol';
  symbol.textContent = plan.symbol;
  card.appendChild(symbol);

  const meta = document.createElement('div');
  meta.className = 'plan-meta';
  if(plan.should_trade){
    const trade = document.createElement('span');
    trade.className = 'meta-pill trade';
    trade.textContent = 'EXECUTE';
    meta.appendChild(trade);
  }
  if(typeof plan.expected_value === 'number'){
    const ev = document.createElement('span');
    ev.className = 'meta-pill';
    ev.textContent = 'EV: ' + plan.expected_value.toFixed(2);
    meta.appendChild(ev);
  }
  if(plan.entry_price){
    const entry = document.createElement('span');
    entry.className = 'meta-pill';
    entry.textContent = 'Entry: ' + plan.entry_price.toFixed(2);
    meta.appendChild(entry);
  }
  if(plan.stop_loss){
    const sl = document.createElement('span');
    sl.className = 'meta-pill';
    sl.textContent = 'SL: ' + plan.stop_loss.toFixed(2);
    meta.appendChild(sl);
  }
  if(plan.take_profit){
    const tp = document.createElement('span');
    tp.className = 'meta-pill';
    tp.textContent = 'TP: ' + plan.take_profit.toFixed(2);
    meta.appendChild(tp);
  }
  if(meta.children.length > 0){ card.appendChild(meta); }

  if(plan.rationale){
    const rationale = document.createElement('div');
    rationale.className = 'plan-rationale';
    rationale.textContent = '"' + plan.rationale + '"';
    card.appendChild(rationale);
  }

  return card;
}

function connectPlanSSE(){
  const source = new EventSource('/plans/stream');

  source.addEventListener('plan', (event) => {
    try{
      const plan = JSON.parse(event.data);
      const empty = document.getElementById('emptyState');
      if(empty){ empty.remove(); }
      plansEl.insertBefore(createPlanCard(plan), plansEl.firstChild);
      while(plansEl.children.length > MAX_PLANS){
        plansEl.removeChild(plansEl.lastChild);
      }
    }catch(err){
      console.error('plan parse', err);
    }
  });

  source.addEventListener('error', () => {
    source.close();
    setTimeout(connectPlanSSE, 2000);
  });
}

refreshStatus();
setInterval(refreshStatus, 5000);
connectPlanSSE();
</script>
</body>
</html>`
