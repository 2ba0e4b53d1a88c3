package whatsapp

import (
	_ "embed"
)

// storeScript maps the wa-js modules onto window.Store.
//
//go:embed js/store.js
var storeScript string

// utilsScript installs window.WWebJS, the serializers every command relies on.
//
//go:embed js/utils.js
var utilsScript string

const jsWPPReady = `() => Boolean(window.WPP && window.WPP.isReady)`

const jsStoreReady = `() => window.Store != undefined`

const jsRuntimeSettings = `async (settings) => {
  const apply = (fn) => { try { fn(); } catch (err) {} };
  apply(() => { window.WPP.chat.defaultSendMessageOptions.createChat = true; });
  apply(() => window.WPP.conn.setLimit('maxMediaSize', 16777216));
  apply(() => window.WPP.conn.setLimit('maxFileSize', 104857600));
  apply(() => window.WPP.conn.setLimit('maxShare', 100));
  apply(() => window.WPP.conn.setLimit('statusVideoMaxDuration', 120));
  apply(() => window.WPP.conn.setLimit('unlimitedPin', true));
  if (settings.markOnlineAvailable) {
    apply(() => window.WPP.conn.setKeepAlive(true));
  }
  apply(() => window.WPP.conn.joinWebBeta(settings.joinBeta));
  return true;
}`

const jsObserveLoadingScreen = `() => {
  let last = null;
  const report = () => {
    const bar = document.querySelector('progress');
    if (!bar) {
      return;
    }
    const percent = Math.round(Number(bar.value) || 0);
    if (percent === last) {
      return;
    }
    last = percent;
    const label = document.querySelector('div._3HbCE, [data-testid="progress-message"]');
    window.onLoadingScreen(percent, label ? label.innerText : '');
  };
  new MutationObserver(report).observe(document, { subtree: true, childList: true, attributes: true, attributeFilter: ['value'] });
  report();
}`

const jsObserveQR = `(containerSelector, retrySelector) => {
  const emit = (el) => {
    const ref = el && el.getAttribute('data-ref');
    if (ref) {
      window.onQRChangedEvent(ref);
    }
  };
  const container = document.querySelector(containerSelector);
  emit(container);
  const observer = new MutationObserver((mutations) => {
    for (const mutation of mutations) {
      if (mutation.type === 'attributes' && mutation.attributeName === 'data-ref') {
        emit(mutation.target);
      } else if (mutation.type === 'childList') {
        const retry = document.querySelector(retrySelector);
        if (retry) {
          retry.click();
        }
      }
    }
  });
  observer.observe((container && container.parentElement) || document.body, {
    subtree: true,
    childList: true,
    attributes: true,
    attributeFilter: ['data-ref'],
  });
}`

const jsObservePairingCode = `(selector, newCodeSelector) => {
  const find = (sel) => {
    if (sel.startsWith('//')) {
      return document.evaluate(sel, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
    }
    return document.querySelector(sel);
  };
  let last = null;
  const read = () => {
    const expired = find(newCodeSelector);
    if (expired) {
      expired.click();
    }
    const el = find(selector);
    if (!el) {
      return;
    }
    const code = el.getAttribute('data-link-code') || el.innerText.replace(/\s+/g, '');
    if (code && code !== last) {
      last = code;
      window.onCodeReceivedEvent(code);
    }
  };
  new MutationObserver(read).observe(document.body, { subtree: true, childList: true, attributes: true, characterData: true });
  read();
}`

const jsCompareWWebVersions = `() => {
  window.compareWwebVersions = (lOperand, operator, rOperand) => {
    if (!['>', '>=', '<', '<=', '='].includes(operator)) {
      throw new Error('Invalid comparison operator: ' + operator);
    }
    const parse = (v) => String(v).split('-')[0].split('.').map((n) => Number(n) || 0);
    const l = parse(lOperand);
    const r = parse(rOperand);
    const len = Math.max(l.length, r.length);
    let cmp = 0;
    for (let i = 0; i < len && cmp === 0; i++) {
      cmp = Math.sign((l[i] || 0) - (r[i] || 0));
    }
    switch (operator) {
      case '>': return cmp > 0;
      case '>=': return cmp >= 0;
      case '<': return cmp < 0;
      case '<=': return cmp <= 0;
      default: return cmp === 0;
    }
  };
  return true;
}`

const jsUnregisterServiceWorkers = `async () => {
  const registrations = await navigator.serviceWorker.getRegistrations();
  for (const registration of registrations) {
    await registration.unregister();
  }
  return registrations.length;
}`

const jsClientInfo = `() => {
  const me = window.WPP.conn.getMyUserId();
  const conn = window.Store.Conn || {};
  return {
    pushname: conn.pushname || '',
    wid: me ? me._serialized : null,
    platform: conn.platform || '',
  };
}`

const jsInstallStoreListeners = `() => {
  const S = window.Store;
  const W = window.WWebJS;
  S.Msg.on('change', (msg) => window.onChangeMessageEvent(W.getMessageModel(msg)));
  S.Msg.on('change:type', (msg) => window.onChangeMessageTypeEvent(W.getMessageModel(msg)));
  S.Msg.on('change:ack', (msg, ack) => window.onMessageAckEvent(W.getMessageModel(msg), ack));
  S.Msg.on('change:isUnsentMedia', (msg, unsent) => {
    if (msg.id.fromMe && !unsent) {
      window.onMessageMediaUploadedEvent(W.getMessageModel(msg));
    }
  });
  S.Msg.on('remove', (msg) => window.onRemoveMessageEvent(W.getMessageModel(msg)));
  S.Msg.on('change:body change:caption', (msg, newBody, prevBody) => window.onEditMessageEvent(W.getMessageModel(msg), newBody, prevBody));
  S.Msg.on('add', (msg) => {
    if (msg.isNewMsg) {
      window.onAddMessageEvent(W.getMessageModel(msg));
    }
  });
  S.AppState.on('change:state', (_state, state) => window.onAppStateChangedEvent(state));
  S.Conn.on('change:battery', (state) => window.onBatteryStateChangedEvent({ battery: state.battery, plugged: state.plugged }));
  S.Call.on('add', (call) => window.onIncomingCall(W.getCallModel(call)));
  S.Chat.on('remove', async (chat) => window.onRemoveChatEvent(await W.getChatModel(chat)));
  S.Chat.on('change:archive', async (chat, currState, prevState) => window.onArchiveChatEvent(await W.getChatModel(chat), currState, prevState));
  S.Chat.on('change:unreadCount', (chat) => window.onChatUnreadCountEvent({ id: chat.id._serialized }));

  if (S.ReactionTable && S.ReactionTable.bulkUpsert) {
    const bulkUpsert = S.ReactionTable.bulkUpsert.bind(S.ReactionTable);
    S.ReactionTable.bulkUpsert = (...args) => {
      window.onReaction((args[0] || []).map((r) => ({
        msgKey: r.id,
        parentMsgKey: r.reactionParentKey,
        senderUserJid: r.author || r.from,
        reactionText: r.reactionText,
        orphan: r.orphan || 0,
        orphanReason: r.orphanReason || '',
        timestamp: r.reactionTimestamp,
        read: Boolean(r.read),
        ack: r.ack || 0,
      })));
      return bulkUpsert(...args);
    };
  }
  return true;
}`

const jsGetState = `() => (window.Store && window.Store.AppState ? window.Store.AppState.state : null)`

const jsTakeover = `() => window.Store.AppState.takeover()`

const jsLogout = `async () => {
  if (window.Store && window.Store.AppState) {
    await window.Store.AppState.logout();
  }
}`

const jsInjectLegacySession = `(() => {
  const session = %s;
  if (document.referrer === 'https://whatsapp.com/') {
    localStorage.clear();
    localStorage.setItem('WABrowserId', session.WABrowserId);
    localStorage.setItem('WASecretBundle', session.WASecretBundle);
    localStorage.setItem('WAToken1', session.WAToken1);
    localStorage.setItem('WAToken2', session.WAToken2);
  }
  localStorage.setItem('remember-me', 'true');
})();`

const jsReadLegacySession = `() => ({
  WABrowserId: localStorage.getItem('WABrowserId'),
  WASecretBundle: localStorage.getItem('WASecretBundle'),
  WAToken1: localStorage.getItem('WAToken1'),
  WAToken2: localStorage.getItem('WAToken2'),
})`

// Command scripts.

const jsGetWWebVersion = `() => window.Debug.VERSION`

const jsSendSeen = `async (chatId) => window.WWebJS.sendSeen(chatId)`

const jsSendMessage = `async (chatId, payload) => {
  const W = window.WWebJS;
  if (payload.sendSeen) {
    try { await W.sendSeen(chatId); } catch (err) {}
  }
  const base = {
    createChat: true,
    quotedMsg: payload.quotedMessageId || undefined,
    mentionedList: payload.mentions || undefined,
  };
  let result;
  if (payload.media) {
    const data = 'data:' + payload.media.mimetype + ';base64,' + payload.media.data;
    result = await window.WPP.chat.sendFileMessage(chatId, data, {
      ...base,
      type: payload.mediaType,
      filename: payload.media.filename,
      filesize: payload.media.filesize || undefined,
      caption: payload.caption || undefined,
      isPtt: payload.sendAudioAsVoice,
      isViewOnce: payload.isViewOnce,
      stickerAuthor: payload.sticker ? payload.sticker.author : undefined,
      stickerName: payload.sticker ? payload.sticker.name : undefined,
      stickerCategories: payload.sticker ? payload.sticker.categories : undefined,
      stickerPack: payload.sticker ? {
        id: payload.sticker.packId,
        name: payload.sticker.packName,
        publisher: payload.sticker.packPublish,
        email: payload.sticker.packEmail,
        website: payload.sticker.packWebsite,
        androidApp: payload.sticker.androidApp,
        iOSApp: payload.sticker.iOSApp,
        isAvatar: payload.sticker.isAvatar,
      } : undefined,
    });
  } else if (payload.location) {
    result = await window.WPP.chat.sendLocationMessage(chatId, {
      ...base,
      lat: payload.location.latitude,
      lng: payload.location.longitude,
      name: payload.location.name,
      address: payload.location.address,
      url: payload.location.url,
    });
  } else if (payload.contacts) {
    result = await window.WPP.chat.sendVCardContactMessage(chatId, payload.contacts.map((id) => ({ id })), base);
  } else {
    result = await window.WPP.chat.sendTextMessage(chatId, payload.body, {
      ...base,
      linkPreview: payload.linkPreview,
      ...(payload.extra || {}),
    });
  }
  const msg = window.Store.Msg.get(result.id) || (await window.Store.Msg.getMessagesById([result.id])).messages[0];
  return msg ? W.getMessageModel(msg) : null;
}`

const jsSearchMessages = `async (query, page, count, remote) => {
  const { messages } = await window.Store.Msg.search(query, page, count, remote);
  return messages.map((msg) => window.WWebJS.getMessageModel(msg));
}`

const jsGetChats = `async () => window.WWebJS.getChats()`

const jsGetChat = `async (chatId) => window.WWebJS.getChat(chatId)`

const jsGetContacts = `() => window.WWebJS.getContacts()`

const jsGetContact = `async (contactId) => window.WWebJS.getContact(contactId)`

const jsGetMessageByID = `async (messageId) => {
  let msg = window.Store.Msg.get(messageId);
  if (!msg) {
    const result = await window.Store.Msg.getMessagesById([messageId]);
    msg = result && result.messages && result.messages[0];
  }
  return msg ? window.WWebJS.getMessageModel(msg) : null;
}`

const jsGetInviteInfo = `async (code) => {
  const info = await window.WPP.group.getGroupInfoFromInviteCode(code);
  return {
    id: info.id,
    subject: info.subject,
    owner: info.owner,
    size: info.size,
    creation: info.creation,
    desc: info.desc,
    participants: info.participants ? info.participants.map((p) => p.id) : [],
  };
}`

const jsAcceptInvite = `async (code) => {
  const result = await window.WPP.group.join(code);
  return result.id._serialized || String(result.id);
}`

const jsAcceptGroupV4Invite = `async (invite) => {
  if (window.WPP.group.joinWithInviteV4) {
    await window.WPP.group.joinWithInviteV4(invite.groupId, invite.fromId, invite.inviteCode, invite.inviteCodeExp);
  } else {
    await window.Store.Invite.joinGroupViaInviteV4(invite.inviteCode, String(invite.inviteCodeExp), invite.groupId, invite.fromId);
  }
  return true;
}`

const jsSetStatus = `async (status) => {
  await window.WPP.profile.setMyStatus(status);
  return true;
}`

const jsSetDisplayName = `async (name) => {
  await window.WPP.profile.setMyProfileName(name);
  return true;
}`

const jsSendPresence = `async (available) => {
  if (available) {
    await window.WPP.conn.markAvailable();
  } else {
    await window.WPP.conn.markUnavailable();
  }
  return true;
}`

const jsArchiveChat = `async (chatId, archive) => {
  await window.WPP.chat.archive(chatId, archive);
  return archive;
}`

const jsPinState = `(chatId, limit) => {
  const chat = window.Store.Chat.get(chatId);
  if (!chat) {
    throw new Error('Chat not found: ' + chatId);
  }
  const models = window.Store.Chat.getModelsArray();
  const boundary = models.length > limit ? models[limit - 1] : null;
  return {
    pinned: Boolean(chat.pin),
    total: models.length,
    boundaryPinned: Boolean(boundary && boundary.pin),
  };
}`

const jsSetPinned = `async (chatId, pin) => {
  const chat = window.Store.Chat.get(chatId);
  if (!chat) {
    throw new Error('Chat not found: ' + chatId);
  }
  await window.Store.Cmd.pinChat(chat, pin);
  return Boolean(chat.pin);
}`

const jsMuteChat = `async (chatId, expiration) => {
  const chat = window.Store.Chat.get(chatId);
  if (!chat) {
    throw new Error('Chat not found: ' + chatId);
  }
  if (expiration === 0) {
    await chat.mute.unmute({ sendDevice: true });
  } else {
    await chat.mute.mute({ expiration, sendDevice: true });
  }
  return true;
}`

const jsMarkChatUnread = `async (chatId) => {
  await window.WPP.chat.markIsUnread(chatId);
  return true;
}`

const jsGetProfilePicURL = `async (contactId) => {
  try {
    const url = await window.WPP.contact.getProfilePictureUrl(contactId);
    return url || '';
  } catch (err) {
    if (err && err.name === 'ServerStatusCodeError') {
      return '';
    }
    throw err;
  }
}`

const jsGetCommonGroups = `async (contactId) => {
  const groups = await window.WPP.contact.getCommonGroups(contactId);
  return (groups || []).map((g) => g.id ? (g.id._serialized || String(g.id)) : String(g));
}`

const jsResetState = `async () => {
  await window.Store.AppState.reconnect();
  return true;
}`

const jsGetNumberID = `async (number) => {
  const result = await window.WPP.contact.queryExists(number);
  if (!result || !result.wid) {
    return null;
  }
  return result.wid._serialized || String(result.wid);
}`

const jsGetFormattedNumber = `(number) => window.Store.NumberInfo.formattedPhoneNumber(number)`

const jsGetCountryCode = `(number) => window.Store.NumberInfo.findCC(number)`

const jsCreateGroup = `async (name, participants) => {
  const result = await window.WPP.group.create(name, participants);
  const out = [];
  for (const [id, status] of Object.entries(result.participants || {})) {
    out.push({ id, code: status && status.code !== undefined ? status.code : 200 });
  }
  return { gid: result.gid, participants: out };
}`

const jsGetLabels = `() => window.WWebJS.getLabels()`

const jsGetLabel = `(labelId) => window.WWebJS.getLabel(labelId)`

const jsGetChatLabels = `(chatId) => window.WWebJS.getChatLabels(chatId)`

const jsGetLabelChatIDs = `(labelId) => {
  const label = window.Store.Label.get(labelId);
  if (!label) {
    return [];
  }
  return label.labelItemCollection.getModelsArray()
    .filter((item) => item.parentType === 'Chat')
    .map((item) => item.parentId);
}`

const jsGetBlockedIDs = `() => window.Store.Blocklist.getModelsArray().map((contact) => contact.id._serialized)`

const jsSetProfilePicture = `async (dataURI) => {
  await window.WPP.profile.setMyProfilePicture(dataURI);
  return true;
}`

const jsDeleteProfilePicture = `async () => {
  await window.WPP.profile.removeMyProfilePicture();
  return true;
}`

const jsAddOrRemoveLabels = `async (labelIds, chatIds) => {
  const labels = window.WWebJS.getLabels().filter((label) => labelIds.includes(label.id));
  const chats = window.Store.Chat.filter((chat) => chatIds.includes(chat.id._serialized));
  const actions = labels.map((label) => ({ id: label.id, type: 'add' }));
  chats.forEach((chat) => {
    (chat.labels || []).forEach((id) => {
      if (!actions.find((action) => action.id == id)) {
        actions.push({ id, type: 'remove' });
      }
    });
  });
  await window.Store.Label.addOrRemoveLabels(actions, chats);
  return true;
}`

const jsGroupMetadata = `async (chatId) => {
  const wid = window.Store.WidFactory.createWid(chatId);
  const metadata = await window.Store.GroupMetadata.find(wid);
  return window.WWebJS.getGroupMetadataModel(metadata) || null;
}`

const jsReact = `async (messageId, reaction) => {
  await window.WPP.chat.sendReactionToMessage(messageId, reaction || false);
  return true;
}`
